package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "AcadSync API",
        "description": "Academic administration and timetable generation service",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Authentication"},
        {"name": "Timetable", "description": "Timetable generation and publication"},
        {"name": "Leaves", "description": "Leave requests and reassignment"},
        {"name": "Rooms", "description": "Room inventory"},
        {"name": "Faculty", "description": "Faculty roster"},
        {"name": "CourseAssignments", "description": "Course-faculty-batch mapping"}
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
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate a user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/timetable/generate": {
            "post": {
                "tags": ["Timetable"],
                "summary": "Generate a timetable for one term",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateRequest"}}
                ],
                "responses": {
                    "201": {"description": "Run created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "No assignments or rooms available"}
                }
            }
        },
        "/timetable/regenerate": {
            "post": {
                "tags": ["Timetable"],
                "summary": "Force a fresh run regardless of reference-data changes",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateRequest"}}
                ],
                "responses": {
                    "201": {"description": "Run created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetable/runs": {
            "get": {
                "tags": ["Timetable"],
                "summary": "List generation runs for a term",
                "parameters": [
                    {"name": "academic_year", "in": "query", "type": "string", "required": true},
                    {"name": "semester", "in": "query", "type": "integer", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetable/runs/{id}/placements": {
            "get": {
                "tags": ["Timetable"],
                "summary": "List a run's placements with reassignment overlays applied",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetable/runs/{id}/publish": {
            "post": {
                "tags": ["Timetable"],
                "summary": "Publish a completed run",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "412": {"description": "Run is not in completed state"}
                }
            }
        },
        "/timetable/active": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Get the display run for a term",
                "parameters": [
                    {"name": "academic_year", "in": "query", "type": "string", "required": true},
                    {"name": "semester", "in": "query", "type": "integer", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "No run for the term"}
                }
            }
        },
        "/leaves": {
            "get": {
                "tags": ["Leaves"],
                "summary": "List leave requests",
                "parameters": [
                    {"name": "faculty_id", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Leaves"],
                "summary": "File a leave request",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateLeaveRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"}
                }
            }
        },
        "/leaves/{id}/approve": {
            "post": {
                "tags": ["Leaves"],
                "summary": "Approve a leave and reassign teaching hours",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ApproveLeaveRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "409": {"description": "Leave already decided"},
                    "422": {"description": "No substitute available"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "GenerateRequest": {
            "type": "object",
            "properties": {
                "academic_year": {"type": "string"},
                "semester": {"type": "integer"},
                "name": {"type": "string"},
                "force": {"type": "boolean"},
                "options": {
                    "type": "object",
                    "properties": {
                        "algorithm": {"type": "string"},
                        "max_iterations": {"type": "integer"},
                        "population_size": {"type": "integer"}
                    }
                }
            },
            "required": ["academic_year", "semester"]
        },
        "CreateLeaveRequest": {
            "type": "object",
            "properties": {
                "faculty_id": {"type": "string"},
                "leave_type": {"type": "string"},
                "start_date": {"type": "string", "format": "date-time"},
                "end_date": {"type": "string", "format": "date-time"},
                "reason": {"type": "string"},
                "substitute_faculty_id": {"type": "string"}
            },
            "required": ["faculty_id", "leave_type", "start_date", "end_date"]
        },
        "ApproveLeaveRequest": {
            "type": "object",
            "properties": {
                "academic_year": {"type": "string"},
                "semester": {"type": "integer"},
                "substitute_faculty_id": {"type": "string"}
            },
            "required": ["academic_year", "semester"]
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
