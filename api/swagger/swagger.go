package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "School Presence API",
        "description": "Attendance and presence engine: timetable resolution with substitutions, opaque-token authorization and a live teacher notification channel",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerToken": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Authentication", "description": "Token issuance and the password bootstrap flow"},
        {"name": "Me", "description": "Student self-service: schedule and presence"},
        {"name": "Classes", "description": "Class management and teacher presence views"},
        {"name": "Users", "description": "Identity administration"},
        {"name": "Timetable", "description": "Recurring timetable, substitutions and periods"},
        {"name": "Live", "description": "Websocket presence channel"}
    ],
    "paths": {
        "/login": {
            "put": {
                "tags": ["Authentication"],
                "summary": "Issue a token",
                "description": "Authenticates by user id and password; overwrites any previous token. Accounts without a password get a bootstrap token and HTTP 202.",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "202": {"description": "Token issued, password must be set"},
                    "401": {"description": "Invalid credentials"}
                }
            },
            "post": {
                "tags": ["Authentication"],
                "summary": "Rotate the caller's token",
                "security": [{"BearerToken": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RotateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/me/password": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Set the caller's password",
                "description": "Completes the bootstrap flow; once a password exists the old one is required.",
                "security": [{"BearerToken": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SetPasswordRequest"}}
                ],
                "responses": {
                    "204": {"description": "Password stored"},
                    "401": {"description": "Old password does not match"}
                }
            }
        },
        "/me/schedule/": {
            "get": {
                "tags": ["Me"],
                "summary": "Caller's resolved schedule",
                "security": [{"BearerToken": []}],
                "parameters": [
                    {"name": "date", "in": "query", "type": "string", "description": "YYYY-MM-DD, defaults to today"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not enrolled"}
                }
            }
        },
        "/me/schedule/current_subject/": {
            "get": {
                "tags": ["Me"],
                "summary": "Caller's current subject",
                "security": [{"BearerToken": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No period is active right now"},
                    "409": {"description": "Overlapping schedule entries"}
                }
            }
        },
        "/me/is_present": {
            "get": {
                "tags": ["Me"],
                "summary": "Caller's presence state",
                "security": [{"BearerToken": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/me/present": {
            "post": {
                "tags": ["Me"],
                "summary": "Record a presence action",
                "security": [{"BearerToken": []}],
                "parameters": [
                    {"name": "room_id", "in": "query", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PresenceActionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No period is active right now"},
                    "409": {"description": "Overlapping schedule entries"}
                }
            }
        },
        "/classes": {
            "post": {
                "tags": ["Classes"],
                "summary": "Create a class",
                "security": [{"BearerToken": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateClassRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "get": {
                "tags": ["Classes"],
                "summary": "List classes",
                "security": [{"BearerToken": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/classes/{id}": {
            "get": {
                "tags": ["Classes"],
                "summary": "Get a class",
                "security": [{"BearerToken": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Class not found"}
                }
            }
        },
        "/classes/{id}/presence": {
            "get": {
                "tags": ["Classes"],
                "summary": "Presence snapshot for the class's active period",
                "security": [{"BearerToken": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No period is active right now"}
                }
            }
        },
        "/classes/{id}/schedule": {
            "get": {
                "tags": ["Classes"],
                "summary": "Resolved class schedule",
                "security": [{"BearerToken": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "date", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/classes/{id}/attendance/report": {
            "get": {
                "tags": ["Classes"],
                "summary": "Export a class attendance report",
                "security": [{"BearerToken": []}],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "date", "in": "query", "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Report file"},
                    "400": {"description": "Unknown format"}
                }
            }
        },
        "/teachers/{id}/schedule": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Resolved teacher schedule",
                "security": [{"BearerToken": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "date", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/users": {
            "post": {
                "tags": ["Users"],
                "summary": "Create a user",
                "security": [{"BearerToken": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateUserRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "get": {
                "tags": ["Users"],
                "summary": "List users",
                "security": [{"BearerToken": []}],
                "parameters": [
                    {"name": "role", "in": "query", "type": "integer"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/users/{id}": {
            "get": {
                "tags": ["Users"],
                "summary": "Get a user",
                "security": [{"BearerToken": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "User not found"}
                }
            }
        },
        "/users/{id}/level": {
            "put": {
                "tags": ["Authentication"],
                "summary": "Change a user's permission level",
                "security": [{"BearerToken": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SetLevelRequest"}}
                ],
                "responses": {
                    "204": {"description": "Level updated"}
                }
            }
        },
        "/students/{id}/class": {
            "put": {
                "tags": ["Classes"],
                "summary": "Enroll a student into a class",
                "security": [{"BearerToken": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EnrollRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetable": {
            "post": {
                "tags": ["Timetable"],
                "summary": "Create a recurring timetable slot",
                "security": [{"BearerToken": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateTimetableEntryRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/substitutions": {
            "post": {
                "tags": ["Timetable"],
                "summary": "Create a date-specific substitution",
                "security": [{"BearerToken": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateSubstitutionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/periods": {
            "get": {
                "tags": ["Timetable"],
                "summary": "List period definitions",
                "security": [{"BearerToken": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Timetable"],
                "summary": "Define a daily period slot",
                "security": [{"BearerToken": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreatePeriodRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/live": {
            "get": {
                "tags": ["Live"],
                "summary": "Websocket presence channel",
                "description": "First client frame must be {\"event\":\"token\",\"data\":\"…\"} with a teacher-level token; the server pushes a snapshot of the active class, then student frames on every presence change.",
                "responses": {
                    "101": {"description": "Switching Protocols"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "password": {"type": "string"}
            },
            "required": ["id"]
        },
        "RotateRequest": {
            "type": "object",
            "properties": {
                "password": {"type": "string"}
            },
            "required": ["password"]
        },
        "SetPasswordRequest": {
            "type": "object",
            "properties": {
                "old_password": {"type": "string"},
                "new_password": {"type": "string"}
            },
            "required": ["new_password"]
        },
        "SetLevelRequest": {
            "type": "object",
            "properties": {
                "level": {"type": "integer", "enum": [1, 2, 3]}
            },
            "required": ["level"]
        },
        "PresenceActionRequest": {
            "type": "object",
            "properties": {
                "action": {"type": "string", "enum": ["set_present_from", "set_present_until", "set_absent"]}
            },
            "required": ["action"]
        },
        "CreateUserRequest": {
            "type": "object",
            "properties": {
                "first_name": {"type": "string"},
                "middle_name": {"type": "string"},
                "last_name": {"type": "string"},
                "short_code": {"type": "string"},
                "role": {"type": "integer", "enum": [1, 2, 3]}
            },
            "required": ["first_name", "last_name", "short_code", "role"]
        },
        "CreateClassRequest": {
            "type": "object",
            "properties": {
                "short": {"type": "string"},
                "description": {"type": "string"},
                "teacher_id": {"type": "integer"},
                "secondary_teacher_id": {"type": "integer"}
            },
            "required": ["short", "teacher_id"]
        },
        "EnrollRequest": {
            "type": "object",
            "properties": {
                "class_id": {"type": "integer"}
            },
            "required": ["class_id"]
        },
        "CreateTimetableEntryRequest": {
            "type": "object",
            "properties": {
                "class_id": {"type": "integer"},
                "room_id": {"type": "integer"},
                "period_id": {"type": "integer"},
                "teacher_id": {"type": "integer"},
                "subject": {"type": "string"},
                "day_of_week": {"type": "integer", "minimum": 0, "maximum": 6},
                "double_lesson": {"type": "boolean"}
            },
            "required": ["class_id", "room_id", "period_id", "teacher_id", "subject"]
        },
        "CreateSubstitutionRequest": {
            "type": "object",
            "properties": {
                "class_id": {"type": "integer"},
                "room_id": {"type": "integer"},
                "period_id": {"type": "integer"},
                "teacher_id": {"type": "integer"},
                "subject": {"type": "string"},
                "double_lesson": {"type": "boolean"},
                "date": {"type": "string", "format": "date"}
            },
            "required": ["class_id", "room_id", "period_id", "teacher_id", "subject", "date"]
        },
        "CreatePeriodRequest": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "start_minute": {"type": "integer", "minimum": 0, "maximum": 1439}
            },
            "required": ["id"]
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
                "pagination": {"$ref": "#/definitions/Pagination"},
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
