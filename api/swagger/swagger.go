package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Gym Core API",
        "description": "Gym management backend: members, classes, payments, attendance, payroll",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Authentication and session management"},
        {"name": "Members", "description": "Member roster and face enrollment"},
        {"name": "Trainers", "description": "Trainer roster"},
        {"name": "Packages", "description": "Membership packages"},
        {"name": "Classes", "description": "Classes and generated sessions"},
        {"name": "Registrations", "description": "Package and class registrations"},
        {"name": "Payments", "description": "Payments, cash settlement, gateway returns"},
        {"name": "Bookings", "description": "Session bookings"},
        {"name": "Check-ins", "description": "Manual, face and walk-in attendance"},
        {"name": "Promotions", "description": "Promotion codes"},
        {"name": "Salaries", "description": "Trainer salary and payroll"},
        {"name": "Commissions", "description": "Commission tiers and calculation"},
        {"name": "Dashboard", "description": "Aggregated dashboards"},
        {"name": "Reports", "description": "CSV and PDF exports"},
        {"name": "Notifications", "description": "In-app notifications"},
        {"name": "Users", "description": "Staff account management"}
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
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate and issue token pair",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Auth"],
                "summary": "Rotate refresh token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RefreshRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Auth"],
                "summary": "Current user profile",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/members": {
            "get": {
                "tags": ["Members"],
                "summary": "List members",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "sort", "in": "query", "type": "string"},
                    {"name": "order", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Members"],
                "summary": "Create member",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateMemberRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/members/{id}": {
            "get": {
                "tags": ["Members"],
                "summary": "Get member",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Members"],
                "summary": "Update member",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateMemberRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Members"],
                "summary": "Deactivate member",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/members/{id}/face": {
            "put": {
                "tags": ["Members"],
                "summary": "Enroll face descriptor",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/FaceDescriptorRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Members"],
                "summary": "Remove face descriptor",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/trainers": {
            "get": {
                "tags": ["Trainers"],
                "summary": "List trainers",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Trainers"],
                "summary": "Create trainer",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateTrainerRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/packages": {
            "get": {
                "tags": ["Packages"],
                "summary": "List membership packages",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Packages"],
                "summary": "Create package",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreatePackageRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/classes": {
            "get": {
                "tags": ["Classes"],
                "summary": "List classes",
                "parameters": [
                    {"name": "trainerId", "in": "query", "type": "string"},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Classes"],
                "summary": "Create class",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateClassRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/classes/{id}/sessions/generate": {
            "post": {
                "tags": ["Classes"],
                "summary": "Generate sessions from weekly slots",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateSessionsRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sessions": {
            "get": {
                "tags": ["Classes"],
                "summary": "List sessions",
                "parameters": [
                    {"name": "classId", "in": "query", "type": "string"},
                    {"name": "from", "in": "query", "type": "string"},
                    {"name": "to", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/registrations": {
            "get": {
                "tags": ["Registrations"],
                "summary": "List registrations",
                "parameters": [
                    {"name": "memberId", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/registrations/{id}/cancel": {
            "post": {
                "tags": ["Registrations"],
                "summary": "Cancel a registration",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": false, "schema": {"$ref": "#/definitions/CancelRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/payments/package": {
            "post": {
                "tags": ["Payments"],
                "summary": "Start a package purchase",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PackagePaymentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/payments/class": {
            "post": {
                "tags": ["Payments"],
                "summary": "Start a class enrollment purchase",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ClassPaymentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/payments/{id}/cash": {
            "post": {
                "tags": ["Payments"],
                "summary": "Settle a pending payment in cash",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/payments/vnpay/return": {
            "get": {
                "tags": ["Payments"],
                "summary": "Gateway return URL",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/bookings": {
            "get": {
                "tags": ["Bookings"],
                "summary": "List bookings",
                "parameters": [
                    {"name": "memberId", "in": "query", "type": "string"},
                    {"name": "sessionId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Bookings"],
                "summary": "Book a session seat",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BookSessionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Session full", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/checkins/manual": {
            "post": {
                "tags": ["Check-ins"],
                "summary": "Manual check-in at the desk",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ManualCheckInRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/checkins/face": {
            "post": {
                "tags": ["Check-ins"],
                "summary": "Face recognition check-in",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/FaceCheckInRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Face not recognized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/walkins": {
            "post": {
                "tags": ["Check-ins"],
                "summary": "Record a paid walk-in visit",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/WalkInRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/salaries/{id}": {
            "get": {
                "tags": ["Salaries"],
                "summary": "Salary record for a trainer and month",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "month", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/salaries/payroll": {
            "post": {
                "tags": ["Salaries"],
                "summary": "Generate payroll for all active trainers",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PayrollRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/commissions/{trainerId}": {
            "get": {
                "tags": ["Commissions"],
                "summary": "Commission breakdown for a trainer",
                "parameters": [
                    {"name": "trainerId", "in": "path", "required": true, "type": "string"},
                    {"name": "month", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/dashboard": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Business overview for a month",
                "parameters": [
                    {"name": "month", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/revenue": {
            "get": {
                "tags": ["Reports"],
                "summary": "Export revenue report",
                "parameters": [
                    {"name": "from", "in": "query", "required": true, "type": "string"},
                    {"name": "to", "in": "query", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File download"}
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
        "RefreshRequest": {
            "type": "object",
            "properties": {
                "refresh_token": {"type": "string"}
            },
            "required": ["refresh_token"]
        },
        "Member": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "full_name": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "date_of_birth": {"type": "string"},
                "gender": {"type": "string"},
                "face_enrolled": {"type": "boolean"},
                "active": {"type": "boolean"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "Trainer": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "full_name": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "specialty": {"type": "string"},
                "base_salary": {"type": "number"},
                "active": {"type": "boolean"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "MembershipPackage": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "duration_days": {"type": "integer"},
                "price": {"type": "number"},
                "session_count": {"type": "integer"},
                "active": {"type": "boolean"}
            }
        },
        "GymClass": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "trainer_id": {"type": "string"},
                "capacity": {"type": "integer"},
                "pricing_mode": {"type": "string"},
                "term_price": {"type": "number"},
                "session_price": {"type": "number"},
                "start_date": {"type": "string"},
                "end_date": {"type": "string"},
                "active": {"type": "boolean"}
            }
        },
        "ClassSession": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "class_id": {"type": "string"},
                "starts_at": {"type": "string"},
                "ends_at": {"type": "string"},
                "capacity": {"type": "integer"},
                "booked_count": {"type": "integer"},
                "status": {"type": "string"}
            }
        },
        "Registration": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "member_id": {"type": "string"},
                "kind": {"type": "string"},
                "package_id": {"type": "string"},
                "class_id": {"type": "string"},
                "status": {"type": "string"},
                "starts_at": {"type": "string"},
                "expires_at": {"type": "string"},
                "sessions_left": {"type": "integer"}
            }
        },
        "Payment": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "registration_id": {"type": "string"},
                "member_id": {"type": "string"},
                "amount": {"type": "number"},
                "discount": {"type": "number"},
                "method": {"type": "string"},
                "status": {"type": "string"},
                "gateway_txn_ref": {"type": "string"},
                "paid_at": {"type": "string"}
            }
        },
        "Booking": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "session_id": {"type": "string"},
                "member_id": {"type": "string"},
                "status": {"type": "string"},
                "booked_at": {"type": "string"}
            }
        },
        "CheckIn": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "member_id": {"type": "string"},
                "session_id": {"type": "string"},
                "method": {"type": "string"},
                "checked_in_at": {"type": "string"}
            }
        },
        "SalaryRecord": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "trainer_id": {"type": "string"},
                "month": {"type": "string"},
                "base_salary": {"type": "number"},
                "commission": {"type": "number"},
                "bonus": {"type": "number"},
                "total": {"type": "number"},
                "paid": {"type": "boolean"},
                "paid_at": {"type": "string"}
            }
        },
        "Promotion": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "description": {"type": "string"},
                "discount_percent": {"type": "number"},
                "usage_limit": {"type": "integer"},
                "used_count": {"type": "integer"},
                "valid_from": {"type": "string"},
                "valid_until": {"type": "string"},
                "active": {"type": "boolean"}
            }
        },
        "CreateMemberRequest": {
            "type": "object",
            "properties": {
                "full_name": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "date_of_birth": {"type": "string"},
                "gender": {"type": "string"}
            },
            "required": ["full_name", "phone"]
        },
        "UpdateMemberRequest": {
            "type": "object",
            "properties": {
                "full_name": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "date_of_birth": {"type": "string"},
                "gender": {"type": "string"},
                "active": {"type": "boolean"}
            }
        },
        "CreateTrainerRequest": {
            "type": "object",
            "properties": {
                "full_name": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "specialty": {"type": "string"},
                "base_salary": {"type": "number"}
            },
            "required": ["full_name", "email"]
        },
        "CreatePackageRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "duration_days": {"type": "integer"},
                "price": {"type": "number"},
                "session_count": {"type": "integer"}
            },
            "required": ["name", "duration_days", "price"]
        },
        "CreateClassRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "trainer_id": {"type": "string"},
                "capacity": {"type": "integer"},
                "pricing_mode": {"type": "string"},
                "term_price": {"type": "number"},
                "session_price": {"type": "number"},
                "start_date": {"type": "string"},
                "end_date": {"type": "string"},
                "slots": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/WeeklySlot"}
                }
            },
            "required": ["name", "trainer_id", "capacity", "pricing_mode"]
        },
        "WeeklySlot": {
            "type": "object",
            "properties": {
                "day_of_week": {"type": "integer"},
                "start_time": {"type": "string"},
                "end_time": {"type": "string"}
            }
        },
        "GenerateSessionsRequest": {
            "type": "object",
            "properties": {
                "from": {"type": "string"},
                "to": {"type": "string"}
            },
            "required": ["from", "to"]
        },
        "CancelRequest": {
            "type": "object",
            "properties": {
                "reason": {"type": "string"}
            }
        },
        "PackagePaymentRequest": {
            "type": "object",
            "properties": {
                "member_id": {"type": "string"},
                "package_id": {"type": "string"},
                "method": {"type": "string"},
                "promo_code": {"type": "string"}
            },
            "required": ["member_id", "package_id", "method"]
        },
        "ClassPaymentRequest": {
            "type": "object",
            "properties": {
                "member_id": {"type": "string"},
                "class_id": {"type": "string"},
                "method": {"type": "string"},
                "promo_code": {"type": "string"}
            },
            "required": ["member_id", "class_id", "method"]
        },
        "BookSessionRequest": {
            "type": "object",
            "properties": {
                "session_id": {"type": "string"},
                "member_id": {"type": "string"}
            },
            "required": ["session_id"]
        },
        "ManualCheckInRequest": {
            "type": "object",
            "properties": {
                "member_id": {"type": "string"},
                "session_id": {"type": "string"}
            },
            "required": ["member_id"]
        },
        "FaceCheckInRequest": {
            "type": "object",
            "properties": {
                "descriptor": {
                    "type": "array",
                    "items": {"type": "number"}
                },
                "session_id": {"type": "string"}
            },
            "required": ["descriptor"]
        },
        "FaceDescriptorRequest": {
            "type": "object",
            "properties": {
                "descriptor": {
                    "type": "array",
                    "items": {"type": "number"}
                }
            },
            "required": ["descriptor"]
        },
        "WalkInRequest": {
            "type": "object",
            "properties": {
                "guest_name": {"type": "string"},
                "phone": {"type": "string"},
                "method": {"type": "string"}
            },
            "required": ["guest_name", "method"]
        },
        "PayrollRequest": {
            "type": "object",
            "properties": {
                "month": {"type": "string"}
            },
            "required": ["month"]
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
