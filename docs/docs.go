// Package docs holds the Swagger document served at /swagger/*. It mirrors
// the swag annotations on cmd/console and internal/api/handler.
package docs

//go:generate go run github.com/swaggo/swag/cmd/swag@v1.16.2 init -d ../ -g cmd/console/main.go -o . --outputTypes go

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
        "/health": {
            "get": {
                "tags": ["health"],
                "summary": "Liveness probe",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/health/ready": {
            "get": {
                "tags": ["health"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.readinessResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.readinessResponse"}}
                }
            }
        },
        "/login": {
            "get": {
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Login screen",
                "parameters": [
                    {"type": "string", "description": "Path to resume after sign-in", "name": "return_to", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.loginPageResponse"}},
                    "202": {"description": "Accepted"},
                    "302": {"description": "already signed in"}
                }
            },
            "post": {
                "consumes": ["application/json", "application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Sign in",
                "parameters": [
                    {"description": "Credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.loginRequest"}}
                ],
                "responses": {
                    "303": {"description": "redirect to return_to"},
                    "302": {"description": "already signed in; redirect to /dashboard"},
                    "400": {"description": "Bad Request"},
                    "401": {"description": "Unauthorized"},
                    "409": {"description": "Conflict"},
                    "503": {"description": "Service Unavailable"}
                }
            }
        },
        "/logout": {
            "post": {
                "tags": ["session"],
                "summary": "Sign out",
                "responses": {"303": {"description": "redirect to /login"}}
            }
        },
        "/session": {
            "get": {
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Current session",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.sessionResponse"}}}
            }
        },
        "/session/refresh": {
            "post": {
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Refresh the session",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.sessionResponse"}},
                    "401": {"description": "Unauthorized"},
                    "503": {"description": "Service Unavailable"}
                }
            }
        },
        "/store/refresh": {
            "post": {
                "produces": ["application/json"],
                "tags": ["store"],
                "summary": "Re-check the merchant store",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.StoreCheck"}},
                    "423": {"description": "Locked"},
                    "503": {"description": "Service Unavailable"}
                }
            }
        },
        "/unauthorized": {
            "get": {
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Unauthorized screen",
                "responses": {
                    "302": {"description": "not signed in"},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.unauthorizedResponse"}}
                }
            }
        },
        "/{screen}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["screens"],
                "summary": "Console screen",
                "parameters": [
                    {"type": "string", "description": "Capability", "name": "screen", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.screenResponse"}},
                    "202": {"description": "Accepted"},
                    "302": {"description": "redirect to login or unauthorized"},
                    "423": {"description": "Locked"}
                }
            }
        }
    },
    "definitions": {
        "domain.MerchantInfo": {
            "type": "object",
            "properties": {
                "storeId": {"type": "string"},
                "storeName": {"type": "string"}
            }
        },
        "domain.StoreCheck": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "state": {"type": "string"},
                "store": {"$ref": "#/definitions/domain.StoreResource"}
            }
        },
        "domain.StoreResource": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "status": {"type": "string"}
            }
        },
        "domain.User": {
            "type": "object",
            "properties": {
                "active": {"type": "boolean"},
                "email": {"type": "string"},
                "id": {"type": "string"},
                "merchantInfo": {"$ref": "#/definitions/domain.MerchantInfo"},
                "name": {"type": "string"},
                "role": {"type": "string"}
            }
        },
        "handler.loginPageResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "return_to": {"type": "string"},
                "screen": {"type": "string"}
            }
        },
        "handler.loginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"},
                "return_to": {"type": "string"}
            }
        },
        "handler.readinessResponse": {
            "type": "object",
            "properties": {
                "dependencies": {"type": "object"},
                "status": {"type": "string"}
            }
        },
        "handler.screenResponse": {
            "type": "object",
            "properties": {
                "capabilities": {"type": "array", "items": {"type": "string"}},
                "screen": {"type": "string"},
                "store": {"$ref": "#/definitions/domain.StoreCheck"},
                "user": {"$ref": "#/definitions/domain.User"}
            }
        },
        "handler.sessionResponse": {
            "type": "object",
            "properties": {
                "capabilities": {"type": "array", "items": {"type": "string"}},
                "error": {"type": "string"},
                "id": {"type": "string"},
                "state": {"type": "string"},
                "user": {"$ref": "#/definitions/domain.User"}
            }
        },
        "handler.unauthorizedResponse": {
            "type": "object",
            "properties": {
                "capabilities": {"type": "array", "items": {"type": "string"}},
                "message": {"type": "string"},
                "role": {"type": "string"},
                "screen": {"type": "string"}
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
	Title:            "Marketplace Admin Console",
	Description:      "Session and authorization guard of the marketplace admin console.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
