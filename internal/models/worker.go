package models

// Worker is a row of the usuarios table. Clave holds the bcrypt digest and
// only ever leaves the process encrypted inside the session snapshot.
type Worker struct {
	ID             int    `json:"idusuarios"`
	Nombre         string `json:"nombre"`
	Apellido       string `json:"apellido"`
	Email          string `json:"email"`
	Usuario        string `json:"usuario"`
	Clave          string `json:"clave"`
	Permiso        bool   `json:"permiso"`
	Administrador  bool   `json:"administrador"`
	UsuarioVisible bool   `json:"usuarioVisible"`
}

// WorkerForm is the body of the register and update forms.
type WorkerForm struct {
	Nombre   string `form:"nombre" json:"nombre" binding:"required,alphaes"`
	Apellido string `form:"apellido" json:"apellido" binding:"required,alphaes"`
	Email    string `form:"email" json:"email" binding:"required,email"`
	Usuario  string `form:"usuario" json:"usuario" binding:"required,min=8,max=20,alphanumast"`
	Clave    string `form:"clave" json:"clave" binding:"required,min=8,max=20,alphanumast"`
}

type LoginRequest struct {
	Usuario string `form:"usuario" binding:"required,min=8,max=20,alphanumast"`
	Clave   string `form:"clave" binding:"required,min=8,max=20,alphanumast"`
}

type CodeRequest struct {
	CodigoMFA string `form:"codigo_mfa"`
}

type WorkerFilter struct {
	Nombre   string `form:"nombre"`
	Apellido string `form:"apellido"`
}
