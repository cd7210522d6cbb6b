package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "{{.Title}}",
        "description": "{{escape .Description}}",
        "version": "{{.Version}}"
    },
    "basePath": "{{.BasePath}}",
    "schemes": {{ marshal .Schemes }},
    "tags": [
        {"name": "StudyPlan", "description": "Timetable generation"},
        {"name": "System", "description": "Status, health and metrics"}
    ],
    "paths": {
        "/study-plan": {
            "post": {
                "tags": ["StudyPlan"],
                "summary": "Generate a study plan",
                "description": "Returns the bare plan. X-Plan-Cache reports HIT or MISS.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StudyPlanRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/StudyPlanResponse"}},
                    "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/ErrorEnvelope"}},
                    "413": {"description": "Range or subject count over the limit", "schema": {"$ref": "#/definitions/ErrorEnvelope"}},
                    "504": {"description": "Generation timed out", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/study-plan/batch": {
            "post": {
                "tags": ["StudyPlan"],
                "summary": "Generate several study plans",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BatchStudyPlanRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/BatchStudyPlanResponse"}},
                    "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/ErrorEnvelope"}},
                    "413": {"description": "Too many requests in one batch", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/study-plan/cache": {
            "delete": {
                "tags": ["StudyPlan"],
                "summary": "Drop every cached plan",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "Envelope with data.flushed", "schema": {"$ref": "#/definitions/SuccessEnvelope"}},
                    "500": {"description": "Cache backend failure", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/study-plan/export": {
            "post": {
                "tags": ["StudyPlan"],
                "summary": "Download a study plan",
                "consumes": ["application/json"],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"], "default": "csv"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StudyPlanRequest"}}
                ],
                "responses": {
                    "200": {"description": "Rendered file", "schema": {"type": "file"}},
                    "400": {"description": "Invalid input or format", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "Topic": {
            "type": "object",
            "required": ["name", "estimated_hours"],
            "properties": {
                "name": {"type": "string"},
                "estimated_hours": {"type": "number"},
                "difficulty": {"type": "integer", "minimum": 1, "maximum": 5}
            }
        },
        "Subject": {
            "type": "object",
            "required": ["name", "importance", "topics"],
            "properties": {
                "name": {"type": "string"},
                "importance": {"type": "string", "description": "High, Medium, Low or a 1-5 rating"},
                "exam_date": {"type": "string", "format": "date"},
                "difficulty": {"type": "integer", "minimum": 1, "maximum": 5},
                "topics": {"type": "array", "items": {"$ref": "#/definitions/Topic"}}
            }
        },
        "Preferences": {
            "type": "object",
            "required": ["session_duration"],
            "properties": {
                "available_hours_per_day": {"type": "object", "additionalProperties": {"type": "number"}},
                "weekday_hours": {"type": "number"},
                "weekend_hours": {"type": "number"},
                "session_duration": {"type": "number"},
                "break_duration": {"type": "number"},
                "preferred_study_time": {"type": "string", "enum": ["morning", "afternoon", "evening", "night"]},
                "study_style": {"type": "string", "enum": ["fixed", "flexible"]},
                "session_length": {"type": "string", "enum": ["long", "pomodoro"]},
                "revision_days_before": {"type": "integer"},
                "weekly_revision": {"type": "boolean"},
                "break_days": {"type": "array", "items": {"type": "string", "format": "date"}}
            }
        },
        "StudyPlanRequest": {
            "type": "object",
            "required": ["subjects", "start_date", "end_date", "preferences"],
            "properties": {
                "user_profile": {"type": "object", "properties": {"name": {"type": "string"}, "level": {"type": "string"}}},
                "subjects": {"type": "array", "items": {"$ref": "#/definitions/Subject"}},
                "start_date": {"type": "string", "format": "date"},
                "end_date": {"type": "string", "format": "date"},
                "preferences": {"$ref": "#/definitions/Preferences"}
            }
        },
        "Session": {
            "type": "object",
            "properties": {
                "subject": {"type": "string"},
                "topic": {"type": "string"},
                "session_type": {"type": "string", "enum": ["study", "revision"]},
                "start_time": {"type": "string", "example": "07:00"},
                "end_time": {"type": "string", "example": "08:30"},
                "duration_hours": {"type": "number"}
            }
        },
        "Day": {
            "type": "object",
            "properties": {
                "date": {"type": "string", "format": "date"},
                "sessions": {"type": "array", "items": {"$ref": "#/definitions/Session"}}
            }
        },
        "UnallocatedTopic": {
            "type": "object",
            "properties": {
                "subject": {"type": "string"},
                "topic": {"type": "string"},
                "hours_remaining": {"type": "number"}
            }
        },
        "StudyPlanResponse": {
            "type": "object",
            "properties": {
                "days": {"type": "array", "items": {"$ref": "#/definitions/Day"}},
                "total_study_hours": {"type": "number"},
                "subjects_distribution": {"type": "object", "additionalProperties": {"type": "number"}},
                "insufficient_time": {"type": "boolean"},
                "total_hours_needed": {"type": "number"},
                "available_hours": {"type": "number"},
                "unallocated_topics": {"type": "array", "items": {"$ref": "#/definitions/UnallocatedTopic"}}
            }
        },
        "BatchStudyPlanRequest": {
            "type": "object",
            "required": ["requests"],
            "properties": {
                "requests": {"type": "array", "items": {"$ref": "#/definitions/StudyPlanRequest"}}
            }
        },
        "BatchStudyPlanResponse": {
            "type": "object",
            "properties": {
                "results": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "index": {"type": "integer"},
                            "plan": {"$ref": "#/definitions/StudyPlanResponse"},
                            "detail": {"type": "string"}
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
        "SuccessEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "meta": {"type": "object"}
            }
        },
        "ErrorEnvelope": {
            "type": "object",
            "properties": {
                "error": {"$ref": "#/definitions/APIError"},
                "detail": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds the document metadata rendered into docTemplate.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	BasePath:         "/api",
	Schemes:          []string{"http"},
	Title:            "Study Planner API",
	Description:      "Deterministic study timetable generation.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

// SetBasePath points the document at the mounted API prefix.
func SetBasePath(prefix string) {
	if prefix == "" {
		prefix = "/"
	}
	SwaggerInfo.BasePath = prefix
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
