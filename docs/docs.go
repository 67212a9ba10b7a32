// Package docs registers the OpenAPI document served under /swagger.
package docs

import "github.com/swaggo/swag/v2"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "schemes": {{ marshal .Schemes }},
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Admin token. Format: \"Bearer {token}\"",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/catalog/products": {
            "get": {
                "tags": ["catalog"],
                "summary": "List products",
                "parameters": [
                    {"type": "string", "name": "category", "in": "query"},
                    {"type": "string", "enum": ["latest", "shuffle"], "name": "order", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/catalog/products/{id}": {
            "get": {
                "tags": ["catalog"],
                "summary": "Get a product",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/catalog/categories": {
            "get": {
                "tags": ["catalog"],
                "summary": "List category facets",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/catalog/stream": {
            "get": {
                "tags": ["catalog"],
                "summary": "Stream catalog changes as server-sent events",
                "produces": ["text/event-stream"],
                "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}
            }
        },
        "/cart": {
            "get": {
                "tags": ["cart"],
                "summary": "Get the session cart",
                "parameters": [{"type": "string", "name": "X-Cart-Session", "in": "header"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/cart/items": {
            "post": {
                "tags": ["cart"],
                "summary": "Add a product to the cart",
                "parameters": [{"type": "string", "name": "X-Cart-Session", "in": "header"}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}
            }
        },
        "/cart/items/{productId}": {
            "put": {
                "tags": ["cart"],
                "summary": "Set a line quantity",
                "parameters": [{"type": "string", "name": "productId", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            },
            "delete": {
                "tags": ["cart"],
                "summary": "Remove a line",
                "parameters": [{"type": "string", "name": "productId", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/checkout/products/{id}/link": {
            "get": {
                "tags": ["checkout"],
                "summary": "WhatsApp link for one product",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/checkout/cart/link": {
            "get": {
                "tags": ["checkout"],
                "summary": "WhatsApp link for the whole cart",
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Admin login",
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}, "429": {"description": "Too Many Requests"}}
            }
        },
        "/auth/logout": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["auth"],
                "summary": "Revoke the current token",
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/admin/products": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["admin"],
                "summary": "Create a product with images",
                "consumes": ["multipart/form-data"],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "502": {"description": "Bad Gateway"}}
            }
        },
        "/admin/products/{id}": {
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["admin"],
                "summary": "Edit a product",
                "consumes": ["multipart/form-data"],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["admin"],
                "summary": "Delete a product",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}, "404": {"description": "Not Found"}}
            }
        },
        "/admin/uploads/{uploadId}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["admin"],
                "summary": "Poll upload progress",
                "parameters": [{"type": "string", "name": "uploadId", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/system/info": {
            "get": {
                "tags": ["system"],
                "summary": "Service information",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/system/health": {
            "get": {
                "tags": ["system"],
                "summary": "Dependency health",
                "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Sari Storefront API",
	Description:      "Catalog, cart, WhatsApp checkout and admin upload API of the sari storefront",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
