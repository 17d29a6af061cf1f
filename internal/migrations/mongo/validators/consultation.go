package validators

import "go.mongodb.org/mongo-driver/bson"

var ConsultationValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"customer_info",
			"subject",
			"message",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"customer_info": bson.M{
				"bsonType": "object",
				"required": []string{"name", "email", "phone"},
				"properties": bson.M{
					"name":  bson.M{"bsonType": "string", "minLength": 2, "maxLength": 100},
					"email": bson.M{"bsonType": "string", "minLength": 3},
					"phone": bson.M{"bsonType": "string", "minLength": 6, "maxLength": 20},
				},
			},

			"subject": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 200,
			},

			"message": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 5000,
			},

			"preferred_contact": bson.M{
				"enum": []string{"email", "phone", "whatsapp"},
			},

			"status": bson.M{
				"enum": []string{"new", "contacted", "in-progress", "completed", "cancelled"},
			},

			"priority": bson.M{
				"enum": []string{"low", "medium", "high"},
			},

			"admin_notes": bson.M{
				"bsonType": "array",
			},

			"contact_history": bson.M{
				"bsonType": "array",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
