package models

// User-facing texts. The school operates in Spanish; every message a client
// can see is defined here.
const (
	MsgLoginSuccess          = "Login exitoso"
	MsgInvalidCredentials    = "Credenciales inválidas"
	MsgAdminInactive         = "Tu cuenta de administrador está desactivada. Contacta con soporte."
	MsgAccountInactive       = "Tu cuenta no está activa. Contacta con soporte."
	MsgEmailRequired         = "El email es obligatorio"
	MsgEmailInvalid          = "Formato de email inválido"
	MsgPasswordRequired      = "La contraseña es obligatoria"
	MsgUnauthorized          = "No autorizado"
	MsgSessionInvalid        = "Sesión inválida o expirada"
	MsgMissingFields         = "Faltan datos obligatorios"
	MsgCurrentPasswordWrong  = "La contraseña actual es incorrecta"
	MsgPasswordUnchanged     = "La nueva contraseña debe ser diferente a la actual"
	MsgPasswordMismatch      = "Las contraseñas no coinciden"
	MsgNewPasswordTooShort   = "La nueva contraseña debe tener al menos 8 caracteres"
	MsgPasswordTooShort      = "La contraseña debe tener al menos 8 caracteres"
	MsgPasswordNeedsUpper    = "Debe contener al menos una mayúscula"
	MsgPasswordNeedsDigit    = "Debe contener al menos un número"
	MsgPasswordChanged       = "Contraseña cambiada exitosamente"
	MsgLogoutSuccess         = "Sesión cerrada exitosamente"
	MsgLogoutFailed          = "Error al cerrar sesión"
	MsgDNIInvalid            = "Formato de DNI inválido"
	MsgFirstNameRequired     = "El nombre es obligatorio"
	MsgLastNameRequired      = "Los apellidos son obligatorios"
	MsgDateOfBirthInvalid    = "Fecha de nacimiento inválida"
	MsgAlreadyRegistered     = "El email o el DNI ya están registrados en la plataforma."
	MsgRegistrationSubmitted = "Solicitud de registro enviada con éxito. Espera la aprobación del administrador."
)
