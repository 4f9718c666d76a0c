package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Course Backoffice API",
        "description": "Back-office control plane: enrollment, teacher assignment and homework distribution",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Admin token issuing"},
        {"name": "Students", "description": "Enrollment, expulsion and teacher assignment"},
        {"name": "Distributions", "description": "Weekly homework distribution"},
        {"name": "Catalog", "description": "Subjects and products"},
        {"name": "Monitoring", "description": "Liveness and metrics"}
    ],
    "paths": {
        "/v1/monitoring/ping": {
            "get": {
                "tags": ["Monitoring"],
                "summary": "Report database reachability",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/v1/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Exchange admin credentials for an API token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/v1/students": {
            "post": {
                "tags": ["Students"],
                "summary": "Enroll a student through an offer",
                "parameters": [
                    {"name": "token", "in": "query", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EnrollStudentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Offer or teacher product not found"},
                    "409": {"description": "VK id collision"}
                }
            }
        },
        "/v1/students/expulse": {
            "post": {
                "tags": ["Students"],
                "summary": "Expulse a student from a product",
                "parameters": [
                    {"name": "token", "in": "query", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ExpulseStudentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Already expulsed"}
                }
            }
        },
        "/v1/students/change-teacher": {
            "post": {
                "tags": ["Students"],
                "summary": "Repoint a student product at another teacher",
                "parameters": [
                    {"name": "token", "in": "query", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ChangeTeacherRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/v1/students/soho/{soho_id}/change-vk-id": {
            "post": {
                "tags": ["Students"],
                "summary": "Rebind the vk id of the student behind a soho account",
                "parameters": [
                    {"name": "soho_id", "in": "path", "required": true, "type": "integer"},
                    {"name": "token", "in": "query", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ChangeVKIDRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "VK id collision"}
                }
            }
        },
        "/v1/students/soho/{soho_id}/grade-teacher": {
            "post": {
                "tags": ["Students"],
                "summary": "Record a student's grade for their teacher",
                "parameters": [
                    {"name": "soho_id", "in": "path", "required": true, "type": "integer"},
                    {"name": "token", "in": "query", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GradeTeacherRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "400": {"description": "Student product has no teacher"}
                }
            }
        },
        "/v1/students/{id}": {
            "get": {
                "tags": ["Students"],
                "summary": "Get a student by id",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "token", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/v1/products/distribute": {
            "post": {
                "tags": ["Distributions"],
                "summary": "Run a homework distribution",
                "parameters": [
                    {"name": "token", "in": "query", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DistributionParams"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/v1/distributions/{id}": {
            "get": {
                "tags": ["Distributions"],
                "summary": "Get a stored distribution snapshot",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "token", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/v1/distributions/{id}/export": {
            "get": {
                "tags": ["Distributions"],
                "summary": "Export a distribution snapshot as csv or pdf",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "token", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File"}
                }
            }
        },
        "/v1/subjects": {
            "get": {
                "tags": ["Catalog"],
                "summary": "List subjects",
                "parameters": [
                    {"name": "token", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/v1/subjects/{id}": {
            "get": {
                "tags": ["Catalog"],
                "summary": "Get a subject",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "token", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/v1/products": {
            "get": {
                "tags": ["Catalog"],
                "summary": "List products",
                "parameters": [
                    {"name": "token", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/v1/products/{id}": {
            "get": {
                "tags": ["Catalog"],
                "summary": "Get a product",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "token", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/v1/teacher-products/{id}/stats": {
            "get": {
                "tags": ["Catalog"],
                "summary": "Get a teacher product with assignment aggregates",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "token", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "EnrollStudentRequest": {
            "type": "object",
            "required": ["student", "offer_ids"],
            "properties": {
                "student": {"$ref": "#/definitions/EnrollStudentPayload"},
                "offer_ids": {"type": "array", "items": {"type": "integer"}}
            }
        },
        "EnrollStudentPayload": {
            "type": "object",
            "required": ["vk_id", "soho_id", "email"],
            "properties": {
                "vk_id": {"type": "integer"},
                "soho_id": {"type": "integer"},
                "email": {"type": "string"},
                "first_name": {"type": "string"},
                "last_name": {"type": "string"},
                "raw_soho_flow_id": {"type": "string", "description": "offer ids and flow ids joined as <offers>:<flows>, comma separated"}
            }
        },
        "ExpulseStudentRequest": {
            "type": "object",
            "required": ["vk_id", "product_id"],
            "properties": {
                "vk_id": {"type": "integer"},
                "product_id": {"type": "integer"}
            }
        },
        "ChangeTeacherRequest": {
            "type": "object",
            "required": ["student_vk_id", "teacher_vk_id", "product_id"],
            "properties": {
                "student_vk_id": {"type": "integer"},
                "teacher_vk_id": {"type": "integer"},
                "product_id": {"type": "integer"}
            }
        },
        "ChangeVKIDRequest": {
            "type": "object",
            "required": ["vk_id"],
            "properties": {
                "vk_id": {"type": "integer"}
            }
        },
        "GradeTeacherRequest": {
            "type": "object",
            "required": ["product_id"],
            "properties": {
                "product_id": {"type": "integer"},
                "grade": {"type": "integer", "minimum": 0, "maximum": 5}
            }
        },
        "DistributionParams": {
            "type": "object",
            "required": ["name", "product_ids", "homeworks"],
            "properties": {
                "name": {"type": "string"},
                "product_ids": {"type": "array", "items": {"type": "integer"}},
                "homeworks": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "homework_id": {"type": "integer"},
                            "filters": {
                                "type": "array",
                                "items": {
                                    "type": "object",
                                    "properties": {"flow_id": {"type": "integer"}}
                                }
                            }
                        }
                    }
                }
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"type": "object"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
