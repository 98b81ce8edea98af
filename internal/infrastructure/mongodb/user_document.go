package mongodb

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/oksasatya/go-user-directory/internal/domain/entity"
	"github.com/oksasatya/go-user-directory/internal/domain/repository"
)

// userDocument is the stored shape of a user in the users collection.
type userDocument struct {
	ID    primitive.ObjectID `bson:"_id,omitempty"`
	Name  string             `bson:"name"`
	Email string             `bson:"email"`
	Age   int                `bson:"age"`
}

func newUserDocument(f entity.UserFields) userDocument {
	return userDocument{Name: f.Name, Email: f.Email, Age: f.Age}
}

func (d userDocument) toEntity() *entity.User {
	return &entity.User{
		ID:    d.ID.Hex(),
		Name:  d.Name,
		Email: d.Email,
		Age:   d.Age,
	}
}

// parseObjectID turns the transport id back into an ObjectID.
func parseObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, repository.ErrInvalidID
	}
	return oid, nil
}
