// Package docs holds the OpenAPI document served under /swagger.
// Regenerate with `swag init -g cmd/server/main.go`.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support",
            "email": "support@replate.id"
        },
        "license": {
            "name": "Apache 2.0",
            "url": "http://www.apache.org/licenses/LICENSE-2.0.html"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/": {"get": {"tags": ["Health"], "summary": "Root endpoint", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}},
        "/health": {"get": {"tags": ["Health"], "summary": "Health check", "produces": ["application/json"], "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}}},
        "/api": {"get": {"tags": ["Health"], "summary": "API info", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}},
        "/api/auth/register/user": {"post": {"tags": ["Auth"], "summary": "Register customer", "consumes": ["application/json"], "produces": ["application/json"],
            "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.RegisterRequest"}}],
            "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/response.Response"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Response"}}, "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/response.Response"}}}}},
        "/api/auth/register/store/merchant": {"post": {"tags": ["Auth"], "summary": "Register merchant", "consumes": ["application/json"], "produces": ["application/json"],
            "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.RegisterRequest"}}],
            "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/response.Response"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Response"}}, "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/response.Response"}}}}},
        "/api/auth/register/store/info": {"post": {"security": [{"BearerAuth": []}], "tags": ["Onboarding"], "summary": "Submit store information", "consumes": ["application/json"], "produces": ["application/json"],
            "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.StoreInfoRequest"}}],
            "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/response.Response"}}, "400": {"description": "Bad Request"}, "403": {"description": "Forbidden"}, "409": {"description": "Conflict"}}}},
        "/api/auth/register/store/verification": {"post": {"security": [{"BearerAuth": []}], "tags": ["Onboarding"], "summary": "Submit store verification", "consumes": ["multipart/form-data"], "produces": ["application/json"],
            "parameters": [
                {"type": "string", "name": "bankAccountNumber", "in": "formData", "required": true},
                {"type": "file", "name": "qrisImage", "in": "formData"},
                {"type": "file", "name": "idCardImage", "in": "formData"}],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}, "409": {"description": "Conflict"}}}},
        "/api/auth/login": {"post": {"tags": ["Auth"], "summary": "Login", "consumes": ["application/json"], "produces": ["application/json"],
            "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.LoginRequest"}}],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}}}},
        "/api/auth/google": {"post": {"tags": ["Auth"], "summary": "Google sign-in", "consumes": ["application/json"], "produces": ["application/json"],
            "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.GoogleRequest"}}],
            "responses": {"200": {"description": "OK"}, "201": {"description": "Created"}, "401": {"description": "Unauthorized"}, "404": {"description": "Not Found"}, "503": {"description": "Service Unavailable"}}}},
        "/api/auth/profile": {"get": {"security": [{"BearerAuth": []}], "tags": ["Auth"], "summary": "Current account", "produces": ["application/json"],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}, "401": {"description": "Unauthorized"}}}},
        "/api/auth/verify-email": {"post": {"tags": ["Auth"], "summary": "Verify email", "consumes": ["application/json"], "produces": ["application/json"],
            "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.TokenRequest"}}],
            "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}},
        "/api/auth/resend-verification": {"post": {"tags": ["Auth"], "summary": "Resend verification email", "consumes": ["application/json"], "produces": ["application/json"],
            "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.EmailRequest"}}],
            "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}}},
        "/api/auth/forgot-password": {"post": {"tags": ["Auth"], "summary": "Forgot password", "consumes": ["application/json"], "produces": ["application/json"],
            "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.EmailRequest"}}],
            "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/api/auth/reset-password": {"post": {"tags": ["Auth"], "summary": "Reset password", "consumes": ["application/json"], "produces": ["application/json"],
            "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.ResetPasswordRequest"}}],
            "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}},
        "/api/merchant/store": {"get": {"security": [{"BearerAuth": []}], "tags": ["Merchant"], "summary": "Get my store", "produces": ["application/json"],
            "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/api/merchant/store/stats": {"get": {"security": [{"BearerAuth": []}], "tags": ["Merchant"], "summary": "Get my store statistics", "produces": ["application/json"],
            "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/api/merchant/products": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Products"], "summary": "List my products", "produces": ["application/json"],
                "parameters": [{"type": "integer", "default": 1, "name": "page", "in": "query"}, {"type": "integer", "default": 20, "name": "limit", "in": "query"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["Products"], "summary": "Create product", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.ProductRequest"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}}},
        "/api/merchant/products/import": {"post": {"security": [{"BearerAuth": []}], "tags": ["Products"], "summary": "Import products", "consumes": ["multipart/form-data"], "produces": ["application/json"],
            "parameters": [{"type": "file", "name": "file", "in": "formData", "required": true}],
            "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}},
        "/api/merchant/products/import/template": {"get": {"security": [{"BearerAuth": []}], "tags": ["Products"], "summary": "Download import template",
            "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"], "responses": {"200": {"description": "OK", "schema": {"type": "file"}}}}},
        "/api/merchant/products/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Products"], "summary": "Get product", "produces": ["application/json"],
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "patch": {"security": [{"BearerAuth": []}], "tags": ["Products"], "summary": "Update product", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}, {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.ProductRequest"}}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["Products"], "summary": "Delete product", "produces": ["application/json"],
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/api/merchant/products/{id}/toggle": {"patch": {"security": [{"BearerAuth": []}], "tags": ["Products"], "summary": "Toggle product visibility", "produces": ["application/json"],
            "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
            "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/api/admin/stores/pending": {"get": {"security": [{"BearerAuth": []}], "tags": ["Admin"], "summary": "List pending stores", "produces": ["application/json"],
            "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}},
        "/api/admin/stores": {"get": {"security": [{"BearerAuth": []}], "tags": ["Admin"], "summary": "List stores", "produces": ["application/json"],
            "parameters": [{"type": "string", "description": "pending, approved or rejected", "name": "status", "in": "query"}],
            "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}},
        "/api/admin/stores/{id}/approve": {"patch": {"security": [{"BearerAuth": []}], "tags": ["Admin"], "summary": "Approve store", "produces": ["application/json"],
            "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
            "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}}},
        "/api/admin/stores/{id}/reject": {"patch": {"security": [{"BearerAuth": []}], "tags": ["Admin"], "summary": "Reject store", "consumes": ["application/json"], "produces": ["application/json"],
            "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}, {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.RejectRequest"}}],
            "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}}},
        "/api/admin/stats": {"get": {"security": [{"BearerAuth": []}], "tags": ["Admin"], "summary": "Platform statistics", "produces": ["application/json"],
            "responses": {"200": {"description": "OK"}}}}
    },
    "definitions": {
        "response.Response": {"type": "object", "properties": {"success": {"type": "boolean"}, "message": {"type": "string"}, "data": {}}},
        "handlers.RegisterRequest": {"type": "object", "required": ["name", "email", "password", "confirmPassword"], "properties": {
            "name": {"type": "string"}, "email": {"type": "string"}, "phone": {"type": "string"}, "password": {"type": "string"}, "confirmPassword": {"type": "string"}}},
        "handlers.LoginRequest": {"type": "object", "required": ["email", "password"], "properties": {"email": {"type": "string"}, "password": {"type": "string"}}},
        "handlers.GoogleRequest": {"type": "object", "required": ["credential"], "properties": {"credential": {"type": "string"}, "mode": {"type": "string", "enum": ["signin", "register"]}}},
        "handlers.TokenRequest": {"type": "object", "required": ["token"], "properties": {"token": {"type": "string"}}},
        "handlers.EmailRequest": {"type": "object", "required": ["email"], "properties": {"email": {"type": "string"}}},
        "handlers.ResetPasswordRequest": {"type": "object", "required": ["token", "newPassword", "confirmPassword"], "properties": {
            "token": {"type": "string"}, "newPassword": {"type": "string"}, "confirmPassword": {"type": "string"}}},
        "handlers.StoreInfoRequest": {"type": "object", "required": ["storeName", "address", "city", "latitude", "longitude", "phone", "operatingHours"], "properties": {
            "storeName": {"type": "string"}, "description": {"type": "string"}, "address": {"type": "string"}, "city": {"type": "string"},
            "latitude": {"type": "number"}, "longitude": {"type": "number"}, "phone": {"type": "string"}, "operatingHours": {"type": "string"}}},
        "handlers.RejectRequest": {"type": "object", "required": ["adminNotes"], "properties": {"adminNotes": {"type": "string"}}},
        "handlers.ProductRequest": {"type": "object", "properties": {
            "name": {"type": "string"}, "description": {"type": "string"}, "category": {"type": "string"},
            "original_price": {"type": "number"}, "discounted_price": {"type": "number"}, "stock": {"type": "integer"},
            "image_url": {"type": "string"}, "available_from": {"type": "string", "format": "date-time"}, "available_until": {"type": "string", "format": "date-time"}}}
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Replate API",
	Description:      "Surplus food marketplace API: accounts, merchant onboarding, store review and product catalogue.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
