// Package docs registers the swagger document served at /swagger/doc.json.
package docs

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
        "/worker": {
            "get": {
                "produces": ["application/json"],
                "tags": ["worker"],
                "summary": "Current worker state",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/httptransport.stateResp"}}}
            }
        },
        "/worker/search": {
            "post": {
                "description": "Idle -> Searching, then Offered or back to Idle with an error. Blocks until the generator answers.",
                "produces": ["application/json"],
                "tags": ["worker"],
                "summary": "Request a job",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/httptransport.actionResp"}}}
            }
        },
        "/worker/accept": {
            "post": {
                "description": "Offered -> Working. The job is recorded in history and the shift timer starts.",
                "produces": ["application/json"],
                "tags": ["worker"],
                "summary": "Accept the offered job",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/httptransport.actionResp"}}}
            }
        },
        "/worker/decline": {
            "post": {
                "produces": ["application/json"],
                "tags": ["worker"],
                "summary": "Decline the offered job",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/httptransport.actionResp"}}}
            }
        },
        "/worker/next": {
            "post": {
                "description": "Completed -> Idle.",
                "produces": ["application/json"],
                "tags": ["worker"],
                "summary": "Find another job",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/httptransport.actionResp"}}}
            }
        },
        "/history": {
            "get": {
                "produces": ["application/json"],
                "tags": ["history"],
                "summary": "Accepted jobs, newest first",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/httptransport.historyResp"}}}
            }
        },
        "/demand": {
            "get": {
                "produces": ["application/json"],
                "tags": ["demand"],
                "summary": "Job demand heat map",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/service.DemandSnapshot"}}}
            }
        },
        "/demand/refresh": {
            "post": {
                "produces": ["application/json"],
                "tags": ["demand"],
                "summary": "Refresh the demand map now",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/service.DemandSnapshot"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/service.DemandSnapshot"}}
                }
            }
        },
        "/events": {
            "get": {
                "description": "Server-sent events; each data line is an envelope {id,type,v,at,request_id,data}.",
                "produces": ["text/event-stream"],
                "tags": ["events"],
                "summary": "Worker state stream",
                "responses": {"200": {"description": "OK", "schema": {"type": "string"}}}
            }
        }
    },
    "definitions": {
        "entity.Job": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "company": {"type": "string"},
                "location": {"type": "string"},
                "description": {"type": "string"},
                "payRate": {"type": "number"},
                "payType": {"type": "string", "enum": ["hourly", "flat"]}
            }
        },
        "entity.DemandEntry": {
            "type": "object",
            "properties": {
                "location": {"type": "string"},
                "demand": {"type": "number"},
                "level": {"type": "integer"},
                "hot": {"type": "boolean"}
            }
        },
        "httptransport.stateResp": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "enum": ["Idle", "Searching", "Offered", "Working", "Completed"]},
                "label": {"type": "string"},
                "job": {"$ref": "#/definitions/entity.Job"},
                "error": {"type": "string"},
                "earnings": {"type": "number"}
            }
        },
        "httptransport.actionResp": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "enum": ["Idle", "Searching", "Offered", "Working", "Completed"]},
                "label": {"type": "string"},
                "job": {"$ref": "#/definitions/entity.Job"},
                "error": {"type": "string"},
                "earnings": {"type": "number"},
                "applied": {"type": "boolean"}
            }
        },
        "httptransport.historyResp": {
            "type": "object",
            "properties": {
                "count": {"type": "integer"},
                "jobs": {"type": "array", "items": {"$ref": "#/definitions/entity.Job"}}
            }
        },
        "service.DemandSnapshot": {
            "type": "object",
            "properties": {
                "entries": {"type": "array", "items": {"$ref": "#/definitions/entity.DemandEntry"}},
                "loaded": {"type": "boolean"},
                "error": {"type": "string"},
                "updated_at": {"type": "string"}
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
	Title:            "GigFinder NT API",
	Description:      "Simulated on-demand gig work for a single worker session.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
