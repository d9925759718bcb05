package audit

// Forensic action vocabulary. Fixed set; handlers must not invent codes.
const (
	ActionLoginAttempt = "LOGIN_ATTEMPT"
	ActionLoginSuccess = "LOGIN_SUCCESS"
	ActionVaultQuery   = "CONSULTA_BOVEDA"
	ActionSearch       = "BUSQUEDA_EXPEDIENTE"
	ActionUpload       = "UPLOAD_FILE"
	ActionDelete       = "DELETE_FILE"
	ActionAdminPanel   = "ACCESO_ADMIN_PANEL"
	ActionStatusChange = "CAMBIO_ESTADO"
)

// Forensic outcome codes.
const (
	OutcomeSuccess         = "EXITOSO"
	OutcomeDeniedPassword  = "DENEGADO_PASSWORD"
	OutcomeDeniedRole      = "DENEGADO_ROL"
	OutcomeDeniedBlocked   = "DENEGADO_BLOQUEADO"
	OutcomeFailed          = "FALLIDO"
)
