package mongodb

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// idValue returns the value to match an id reference against. Hex ids are
// matched both as ObjectID and as the plain string, because case and user
// documents use ObjectIDs while notifications written here use string ids.
func idValue(id string) interface{} {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return id
	}
	return bson.M{"$in": bson.A{oid, id}}
}

// idsValue builds an $in operand matching every id in either form
func idsValue(ids []string) bson.M {
	values := make(bson.A, 0, 2*len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			values = append(values, oid)
		}
		values = append(values, id)
	}
	return bson.M{"$in": values}
}

// byID selects the document with the given _id
func byID(id string) bson.M {
	return bson.M{"_id": idValue(id)}
}

// byOwnedID selects the document with the given _id addressed to recipient
func byOwnedID(id, recipient string) bson.M {
	return bson.M{"_id": idValue(id), "recipient": idValue(recipient)}
}
