package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Resource Hub API",
        "description": "University resource sharing backend",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Auth", "description": "Registration, login and token management"},
        {"name": "Resources", "description": "Upload, browse, download and rate resources"},
        {"name": "Verification", "description": "Moderation queue for pending resources"},
        {"name": "Gamification", "description": "Leaderboard, badges, achievements and personal stats"},
        {"name": "Timetable", "description": "Department class schedules"},
        {"name": "Catalog", "description": "Departments, subjects and modules"},
        {"name": "Assistant", "description": "Study assistant proxy"},
        {"name": "Admin", "description": "Dashboards, visibility and teacher approval"}
    ],
    "paths": {
        "/auth/register": {
            "post": {
                "tags": ["Auth"],
                "summary": "Register a student account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Email already registered"}
                }
            }
        },
        "/auth/register-teacher": {
            "post": {
                "tags": ["Auth"],
                "summary": "Register a teacher account pending admin approval",
                "responses": {
                    "201": {"description": "Created"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate and receive tokens",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Invalid credentials"},
                    "403": {"description": "Inactive or unapproved account"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Auth"],
                "summary": "Exchange a refresh token for a new token pair",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Auth"],
                "summary": "Get the current user's profile",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/resources": {
            "get": {
                "tags": ["Resources"],
                "summary": "Browse verified resources",
                "parameters": [
                    {"name": "type", "in": "query", "type": "string"},
                    {"name": "department_id", "in": "query", "type": "string"},
                    {"name": "subject_id", "in": "query", "type": "string"},
                    {"name": "semester", "in": "query", "type": "integer"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "sort", "in": "query", "type": "string", "enum": ["latest", "oldest", "popular", "rating"]},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Resources"],
                "summary": "Upload a new resource",
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "title", "in": "formData", "type": "string", "required": true},
                    {"name": "type", "in": "formData", "type": "string", "required": true},
                    {"name": "department_id", "in": "formData", "type": "string", "required": true},
                    {"name": "subject_id", "in": "formData", "type": "string", "required": true},
                    {"name": "semester", "in": "formData", "type": "integer", "required": true},
                    {"name": "file", "in": "formData", "type": "file", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "413": {"description": "File too large"}
                }
            }
        },
        "/resources/mine": {
            "get": {
                "tags": ["Resources"],
                "summary": "List the caller's own uploads in every state",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/resources/{id}": {
            "get": {
                "tags": ["Resources"],
                "summary": "Get one verified resource",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not found or not publicly readable"}
                }
            },
            "delete": {
                "tags": ["Resources"],
                "summary": "Delete a resource (owner or admin)",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        },
        "/resources/{id}/download": {
            "post": {
                "tags": ["Resources"],
                "summary": "Request a signed download link",
                "responses": {
                    "200": {"description": "Signed URL issued"}
                }
            }
        },
        "/resources/{id}/rate": {
            "post": {
                "tags": ["Resources"],
                "summary": "Rate a verified resource",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Recomputed aggregate"},
                    "403": {"description": "Uploaders cannot rate their own resources"}
                }
            }
        },
        "/resources/{id}/ratings": {
            "get": {
                "tags": ["Resources"],
                "summary": "List ratings of a verified resource",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/resources/{id}/report": {
            "post": {
                "tags": ["Resources"],
                "summary": "Report a resource for moderator attention",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "Recorded"}
                }
            }
        },
        "/files/{token}": {
            "get": {
                "tags": ["Resources"],
                "summary": "Stream a file behind a signed, short-lived token",
                "responses": {
                    "200": {"description": "File stream"},
                    "403": {"description": "Invalid or expired token"}
                }
            }
        },
        "/verification/pending": {
            "get": {
                "tags": ["Verification"],
                "summary": "List resources waiting for a decision",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Students cannot verify"}
                }
            }
        },
        "/verification/{id}": {
            "post": {
                "tags": ["Verification"],
                "summary": "Approve or reject a pending resource",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/VerifyResourceRequest"}}
                ],
                "responses": {
                    "200": {"description": "Decision applied"},
                    "409": {"description": "Already processed"}
                }
            }
        },
        "/leaderboard": {
            "get": {
                "tags": ["Gamification"],
                "summary": "Browse the contribution leaderboard",
                "parameters": [
                    {"name": "sort", "in": "query", "type": "string", "enum": ["points", "uploads", "verifications"]},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/leaderboard/me": {
            "get": {
                "tags": ["Gamification"],
                "summary": "Personal contribution stats, badge and rank",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/achievements": {
            "get": {
                "tags": ["Gamification"],
                "summary": "List every achievement definition",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/achievements/me": {
            "get": {
                "tags": ["Gamification"],
                "summary": "List the achievements the caller has earned",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/timetable": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Get a department/semester schedule grouped by day",
                "parameters": [
                    {"name": "department_id", "in": "query", "type": "string", "required": true},
                    {"name": "semester", "in": "query", "type": "integer", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            },
            "post": {
                "tags": ["Timetable"],
                "summary": "Replace a department/semester schedule (teacher only)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SaveTimetableRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "403": {"description": "Students cannot edit schedules"}
                }
            }
        },
        "/timetable/my-classes": {
            "get": {
                "tags": ["Timetable"],
                "summary": "List the schedule entries the current teacher has saved",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/timetable/{id}": {
            "delete": {
                "tags": ["Timetable"],
                "summary": "Delete one schedule entry (creator or admin)",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        },
        "/catalog/departments": {
            "get": {
                "tags": ["Catalog"],
                "summary": "List departments",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/catalog/subjects": {
            "get": {
                "tags": ["Catalog"],
                "summary": "List subjects",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/catalog/modules": {
            "get": {
                "tags": ["Catalog"],
                "summary": "List modules of a subject",
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Subject not found"}
                }
            }
        },
        "/assistant/chat": {
            "post": {
                "tags": ["Assistant"],
                "summary": "Ask the study assistant a question",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Generated reply"},
                    "502": {"description": "Upstream unavailable"},
                    "503": {"description": "Assistant disabled"}
                }
            }
        },
        "/assistant/search": {
            "post": {
                "tags": ["Assistant"],
                "summary": "Keyword-assisted resource search",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/admin/dashboard": {
            "get": {
                "tags": ["Admin"],
                "summary": "Platform-wide counters for the admin dashboard",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/admin/resources": {
            "get": {
                "tags": ["Admin"],
                "summary": "List resources across every status and visibility",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/admin/resources/export": {
            "get": {
                "tags": ["Admin"],
                "summary": "Export the resource inventory as CSV or PDF",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File"}
                }
            }
        },
        "/admin/resources/{id}/visibility": {
            "patch": {
                "tags": ["Admin"],
                "summary": "Hide, show or feature a resource",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Updated resource"}
                }
            }
        },
        "/admin/teachers": {
            "get": {
                "tags": ["Admin"],
                "summary": "List teacher accounts",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/admin/teachers/{id}/approve": {
            "post": {
                "tags": ["Admin"],
                "summary": "Approve a pending teacher account",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "Approved"},
                    "409": {"description": "Already approved"}
                }
            }
        },
        "/admin/achievements": {
            "post": {
                "tags": ["Admin"],
                "summary": "Create an achievement definition",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AchievementRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"}
                }
            }
        },
        "/admin/achievements/{id}": {
            "put": {
                "tags": ["Admin"],
                "summary": "Update an achievement definition",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AchievementRequest"}}
                ],
                "responses": {
                    "200": {"description": "Updated"},
                    "404": {"description": "Unknown achievement"}
                }
            }
        },
        "/admin/leaderboard/recompute": {
            "post": {
                "tags": ["Admin"],
                "summary": "Rebuild every leaderboard entry",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Recomputed count"}
                }
            }
        }
    },
    "definitions": {
        "RegisterRequest": {
            "type": "object",
            "required": ["full_name", "email", "password"],
            "properties": {
                "full_name": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"},
                "department_id": {"type": "string"},
                "enrollment_no": {"type": "string"},
                "semester": {"type": "integer"}
            }
        },
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "VerifyResourceRequest": {
            "type": "object",
            "required": ["action"],
            "properties": {
                "action": {"type": "string", "enum": ["approve", "reject"]},
                "reason": {"type": "string"}
            }
        },
        "SaveTimetableRequest": {
            "type": "object",
            "required": ["department_id", "semester", "entries"],
            "properties": {
                "department_id": {"type": "string"},
                "semester": {"type": "integer"},
                "entries": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "day": {"type": "string", "enum": ["monday", "tuesday", "wednesday", "thursday", "friday"]},
                            "time_slot": {"type": "string"},
                            "subject_id": {"type": "string"},
                            "teacher_name": {"type": "string"},
                            "room": {"type": "string"}
                        }
                    }
                }
            }
        },
        "AchievementRequest": {
            "type": "object",
            "required": ["name", "description", "icon"],
            "properties": {
                "name": {"type": "string"},
                "description": {"type": "string"},
                "icon": {"type": "string"},
                "points_required": {"type": "integer"},
                "uploads_required": {"type": "integer"},
                "verifications_required": {"type": "integer"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"},
                "total_pages": {"type": "integer"}
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
