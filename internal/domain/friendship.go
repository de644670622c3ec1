package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FriendshipStatus is the state of a friendship edge.
type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "pending"
	FriendshipAccepted FriendshipStatus = "accepted"
)

// Friendship is the single record for an unordered user pair. The pair is
// canonicalized (UserA.Hex() < UserB.Hex()) so one unique index on
// {userA, userB} enforces "at most one edge per pair"; who sent the request
// is carried explicitly in RequestedBy instead of slot order.
//
// Lifecycle: created pending by the requester, accepted only by the other
// side, deleted outright on reject/cancel/unfriend. There is no terminal
// "rejected" state — a rejected pair may immediately re-request.
type Friendship struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserA       primitive.ObjectID `bson:"userA" json:"userA"`
	UserB       primitive.ObjectID `bson:"userB" json:"userB"`
	RequestedBy primitive.ObjectID `bson:"requestedBy" json:"requestedBy"`
	Status      FriendshipStatus   `bson:"status" json:"status"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// CanonicalPair orders two user IDs into the storage slots.
func CanonicalPair(x, y primitive.ObjectID) (a, b primitive.ObjectID) {
	if x.Hex() < y.Hex() {
		return x, y
	}
	return y, x
}

// Involves reports whether userID is one of the pair members.
func (f *Friendship) Involves(userID primitive.ObjectID) bool {
	return f.UserA == userID || f.UserB == userID
}

// OtherSide resolves the pair member that is not userID.
func (f *Friendship) OtherSide(userID primitive.ObjectID) primitive.ObjectID {
	if f.UserA == userID {
		return f.UserB
	}
	return f.UserA
}

// Recipient is the pair member the request was sent to.
func (f *Friendship) Recipient() primitive.ObjectID {
	return f.OtherSide(f.RequestedBy)
}
