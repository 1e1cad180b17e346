// Package docs registra el documento OpenAPI que sirve /swagger/*.
// Regenerar con: swag init -g cmd/api/main.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/submit-service-request": {
            "post": {
                "description": "Recibe el formulario del wizard y persiste un registro. Header Idempotency-Key opcional.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["submissions"],
                "summary": "Enviar solicitud de servicio",
                "parameters": [
                    {
                        "description": "serviceType + formData",
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/submissions.submitRequest"}
                    },
                    {
                        "type": "string",
                        "description": "Clave de idempotencia",
                        "name": "Idempotency-Key",
                        "in": "header"
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/submissions.submitResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/submissions.submitResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/submissions.submitResponse"}}
                }
            }
        },
        "/api/auth/login": {
            "post": {
                "description": "Valida email/password y devuelve el usuario y un JWT.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Login del staff",
                "parameters": [
                    {
                        "description": "Credenciales",
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/users.loginRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Unauthorized"}
                }
            }
        }
    },
    "definitions": {
        "submissions.submitRequest": {
            "type": "object",
            "properties": {
                "serviceType": {"type": "string"},
                "formData": {"type": "object"}
            }
        },
        "submissions.submitResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "submissionId": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "users.loginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Mediation CMS API",
	Description:      "API del sitio de mediación comunitaria: intake, CMS y autenticación del staff.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
