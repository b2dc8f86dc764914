package i18n

// Error codes must match the codes defined in internal/platform/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodeUnknown                      = "UNKNOWN"
	CodeSchema                       = "SCHEMA_ERROR"
	CodeConstraintViolation          = "CONSTRAINT_VIOLATION"
	CodeStorageUnavailable           = "STORAGE_UNAVAILABLE"
	CodeLedgerCorruption             = "LEDGER_CORRUPTION"
	CodeNotFound                     = "NOT_FOUND"
	CodeInvalidArgument              = "INVALID_ARGUMENT"
	CodeUserInvalidEmail             = "USER_INVALID_EMAIL"
	CodeUserEmptyName                = "USER_EMPTY_NAME"
	CodeUserInvalidRole              = "USER_INVALID_ROLE"
	CodeUserWeakPassword             = "USER_WEAK_PASSWORD"
	CodeUserInvalidPermissions       = "USER_INVALID_PERMISSIONS"
	CodeUserInvalidCredentials       = "USER_INVALID_CREDENTIALS"
	CodeProductEmptyName             = "PRODUCT_EMPTY_NAME"
	CodeProductInvalidPrice          = "PRODUCT_INVALID_PRICE"
	CodeProductInvalidStock          = "PRODUCT_INVALID_STOCK"
	CodeCustomerEmptyName            = "CUSTOMER_EMPTY_NAME"
	CodeCustomerInvalidEmail         = "CUSTOMER_INVALID_EMAIL"
	CodeOrderInvalidStatus           = "ORDER_INVALID_STATUS"
	CodeOrderInvalidStatusTransition = "ORDER_INVALID_STATUS_TRANSITION"
	CodeOrderInvalidPaymentMethod    = "ORDER_INVALID_PAYMENT_METHOD"
	CodeOrderInvalidQuantity         = "ORDER_INVALID_QUANTITY"
	CodeOrderEmpty                   = "ORDER_EMPTY"
	CodeOrderInsufficientStock       = "ORDER_INSUFFICIENT_STOCK"
	CodeOrderNotEditable             = "ORDER_NOT_EDITABLE"
	CodeSettingsEmptyName            = "SETTINGS_EMPTY_NAME"
	CodeSettingsInvalidTax           = "SETTINGS_INVALID_TAX"
	CodeSettingsInvalidLanguage      = "SETTINGS_INVALID_LANGUAGE"
)

var englishMessages = map[Code]string{
	CodeUnknown:                      "An unexpected error occurred.",
	CodeSchema:                       "The database schema could not be updated (step {{.version}}: {{.description}}).",
	CodeConstraintViolation:          "The change was rejected because it conflicts with existing data.",
	CodeStorageUnavailable:           "The database is unavailable. Close other copies of the application and try again.",
	CodeLedgerCorruption:             "The database version history is inconsistent and needs manual repair.",
	CodeNotFound:                     "The requested record was not found.",
	CodeInvalidArgument:              "Some of the provided values are invalid.",
	CodeUserInvalidEmail:             "Enter a valid email address.",
	CodeUserEmptyName:                "A user needs a name.",
	CodeUserInvalidRole:              "Role must be admin, manager or user.",
	CodeUserWeakPassword:             "Passwords need at least {{.min}} characters.",
	CodeUserInvalidPermissions:       "The permission list is malformed.",
	CodeUserInvalidCredentials:       "Email or password is incorrect.",
	CodeProductEmptyName:             "A product needs a name.",
	CodeProductInvalidPrice:          "Prices and costs cannot be negative.",
	CodeProductInvalidStock:          "Stock cannot be negative.",
	CodeCustomerEmptyName:            "A customer needs a first and last name.",
	CodeCustomerInvalidEmail:         "Enter a valid customer email address.",
	CodeOrderInvalidStatus:           "Unknown order status {{.status}}.",
	CodeOrderInvalidStatusTransition: "An order cannot move from {{.from}} to {{.to}}.",
	CodeOrderInvalidPaymentMethod:    "Payment method must be cash, card or transfer.",
	CodeOrderInvalidQuantity:         "Item quantities must be at least 1.",
	CodeOrderEmpty:                   "An order needs at least one item.",
	CodeOrderInsufficientStock:       "Not enough stock for {{.product}}.",
	CodeOrderNotEditable:             "Only pending orders can be edited; this one is {{.status}}.",
	CodeSettingsEmptyName:            "The company needs a name.",
	CodeSettingsInvalidTax:           "Tax percentage must be between 0 and 100.",
	CodeSettingsInvalidLanguage:      "Unsupported language {{.language}}.",
}

var spanishMessages = map[Code]string{
	CodeUnknown:                      "Ocurrió un error inesperado.",
	CodeSchema:                       "No se pudo actualizar el esquema de la base de datos (paso {{.version}}: {{.description}}).",
	CodeConstraintViolation:          "El cambio fue rechazado porque entra en conflicto con datos existentes.",
	CodeStorageUnavailable:           "La base de datos no está disponible. Cierre otras copias de la aplicación e inténtelo de nuevo.",
	CodeLedgerCorruption:             "El historial de versiones de la base de datos es inconsistente y requiere reparación manual.",
	CodeNotFound:                     "No se encontró el registro solicitado.",
	CodeInvalidArgument:              "Algunos de los valores proporcionados no son válidos.",
	CodeUserInvalidEmail:             "Ingrese un correo electrónico válido.",
	CodeUserEmptyName:                "El usuario necesita un nombre.",
	CodeUserInvalidRole:              "El rol debe ser admin, manager o user.",
	CodeUserWeakPassword:             "La contraseña necesita al menos {{.min}} caracteres.",
	CodeUserInvalidPermissions:       "La lista de permisos está mal formada.",
	CodeUserInvalidCredentials:       "El correo o la contraseña son incorrectos.",
	CodeProductEmptyName:             "El producto necesita un nombre.",
	CodeProductInvalidPrice:          "Los precios y costos no pueden ser negativos.",
	CodeProductInvalidStock:          "El stock no puede ser negativo.",
	CodeCustomerEmptyName:            "El cliente necesita nombre y apellido.",
	CodeCustomerInvalidEmail:         "Ingrese un correo electrónico de cliente válido.",
	CodeOrderInvalidStatus:           "Estado de pedido desconocido {{.status}}.",
	CodeOrderInvalidStatusTransition: "Un pedido no puede pasar de {{.from}} a {{.to}}.",
	CodeOrderInvalidPaymentMethod:    "El método de pago debe ser cash, card o transfer.",
	CodeOrderInvalidQuantity:         "Las cantidades deben ser al menos 1.",
	CodeOrderEmpty:                   "Un pedido necesita al menos un artículo.",
	CodeOrderInsufficientStock:       "No hay suficiente stock de {{.product}}.",
	CodeOrderNotEditable:             "Solo se pueden editar pedidos pendientes; este está {{.status}}.",
	CodeSettingsEmptyName:            "La empresa necesita un nombre.",
	CodeSettingsInvalidTax:           "El porcentaje de impuesto debe estar entre 0 y 100.",
	CodeSettingsInvalidLanguage:      "Idioma no soportado {{.language}}.",
}
