package docs

import "github.com/swaggo/swag"

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
    "paths": {
        "/health": {
            "get": {
                "tags": ["health"],
                "summary": "Liveness check",
                "responses": {
                    "200": {"description": "Server is running"}
                }
            }
        },
        "/ready": {
            "get": {
                "tags": ["health"],
                "summary": "Readiness check",
                "description": "Pings the document backend",
                "responses": {
                    "200": {"description": "Backend reachable"},
                    "503": {"description": "Backend unreachable"}
                }
            }
        },
        "/summary": {
            "get": {
                "tags": ["summary"],
                "summary": "Board summary",
                "description": "Record counts per collection, project and task status histograms, open tasks and live sessions",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "Summary", "schema": {"$ref": "#/definitions/BoardSummary"}}
                }
            }
        },
        "/{collection}": {
            "get": {
                "tags": ["records"],
                "summary": "List records",
                "description": "Returns every record of the collection. Query parameters filter by field equality; array fields match when they contain the value.",
                "produces": ["application/json"],
                "parameters": [
                    {"$ref": "#/parameters/collection"}
                ],
                "responses": {
                    "200": {"description": "Records", "schema": {"type": "array", "items": {"type": "object"}}}
                }
            },
            "post": {
                "tags": ["records"],
                "summary": "Create a record",
                "description": "Appends the body as given. No id or timestamps are assigned.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"$ref": "#/parameters/collection"},
                    {"in": "body", "name": "record", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "201": {"description": "Stored record", "schema": {"type": "object"}},
                    "400": {"description": "Body is not a JSON object", "schema": {"$ref": "#/definitions/MessageResponse"}}
                }
            }
        },
        "/{collection}/{id}": {
            "get": {
                "tags": ["records"],
                "summary": "Get a record",
                "produces": ["application/json"],
                "parameters": [
                    {"$ref": "#/parameters/collection"},
                    {"$ref": "#/parameters/id"}
                ],
                "responses": {
                    "200": {"description": "Record", "schema": {"type": "object"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/MessageResponse"}}
                }
            },
            "patch": {
                "tags": ["records"],
                "summary": "Merge fields into a record",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"$ref": "#/parameters/collection"},
                    {"$ref": "#/parameters/id"},
                    {"in": "body", "name": "fields", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "Merged record", "schema": {"type": "object"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/MessageResponse"}}
                }
            },
            "put": {
                "tags": ["records"],
                "summary": "Replace a record",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"$ref": "#/parameters/collection"},
                    {"$ref": "#/parameters/id"},
                    {"in": "body", "name": "record", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "Replaced record", "schema": {"type": "object"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/MessageResponse"}}
                }
            },
            "delete": {
                "tags": ["records"],
                "summary": "Delete a record",
                "parameters": [
                    {"$ref": "#/parameters/collection"},
                    {"$ref": "#/parameters/id"}
                ],
                "responses": {
                    "204": {"description": "Deleted"},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/MessageResponse"}}
                }
            }
        }
    },
    "parameters": {
        "collection": {
            "in": "path",
            "name": "collection",
            "required": true,
            "type": "string",
            "enum": ["users", "projects", "tasks", "sessions"]
        },
        "id": {
            "in": "path",
            "name": "id",
            "required": true,
            "type": "string"
        }
    },
    "definitions": {
        "MessageResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string", "example": "Not found"}
            }
        },
        "BoardSummary": {
            "type": "object",
            "properties": {
                "counts": {"type": "object", "additionalProperties": {"type": "integer"}},
                "projectsByStatus": {"type": "object", "additionalProperties": {"type": "integer"}},
                "tasksByStatus": {"type": "object", "additionalProperties": {"type": "integer"}},
                "openTasks": {"type": "integer"},
                "overdueTasks": {"type": "integer"},
                "upcomingTasks": {"type": "integer"},
                "averageProjectProgress": {"type": "number"},
                "liveSessions": {"type": "integer"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:3001",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "ProjectBoard API",
	Description:      "Collection CRUD over the project board document",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
