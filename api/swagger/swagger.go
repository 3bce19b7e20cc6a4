package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Timetable Engine API",
        "description": "Weekly school timetable scheduling engine",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Schedule", "description": "Timetable computation and progress"},
        {"name": "Cache", "description": "Schedule result cache administration"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/schedule": {
            "post": {
                "tags": ["Schedule"],
                "summary": "Compute a weekly timetable",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ScheduleRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Malformed scheduling input", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule/progress": {
            "get": {
                "tags": ["Schedule"],
                "summary": "Current scheduling progress",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule/sample": {
            "get": {
                "tags": ["Schedule"],
                "summary": "Run the canned sample scenario",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule/export": {
            "post": {
                "tags": ["Schedule"],
                "summary": "Export a computed timetable as CSV or PDF",
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ScheduleRequest"}}
                ],
                "responses": {
                    "200": {"description": "File stream"}
                }
            }
        },
        "/cache/status": {
            "get": {
                "tags": ["Cache"],
                "summary": "Schedule cache occupancy",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/cache/clear": {
            "post": {
                "tags": ["Cache"],
                "summary": "Clear the schedule cache",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "Teacher": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "major": {"type": "string"},
                "minor": {"type": "string"}
            },
            "required": ["id", "major", "minor"]
        },
        "Room": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "capacity": {"type": "integer"}
            },
            "required": ["id"]
        },
        "SubjectClass": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "subject": {"type": "string"},
                "times_per_week": {"type": "integer", "minimum": 1},
                "duration": {"type": "integer", "minimum": 1}
            },
            "required": ["id", "subject", "times_per_week", "duration"]
        },
        "ScheduleRequest": {
            "type": "object",
            "properties": {
                "teachers": {"type": "array", "items": {"$ref": "#/definitions/Teacher"}},
                "rooms": {"type": "array", "items": {"$ref": "#/definitions/Room"}},
                "classes": {"type": "array", "items": {"$ref": "#/definitions/SubjectClass"}},
                "max_per_day": {"type": "integer", "default": 6},
                "max_per_week": {"type": "integer", "default": 30},
                "num_shifts": {"type": "integer", "enum": [1, 2, 3], "default": 1}
            },
            "required": ["teachers", "rooms"]
        },
        "Assignment": {
            "type": "object",
            "properties": {
                "teacher": {"type": "string"},
                "class": {"type": "string"},
                "subject": {"type": "string"},
                "room": {"type": "string"},
                "day": {"type": "string"},
                "period": {"type": "string"},
                "occurrence": {"type": "integer"},
                "duration": {"type": "integer"}
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
