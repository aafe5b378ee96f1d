package indexes

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestKeySig(t *testing.T) {
	got := keySig(bson.D{{Key: "groupAlias", Value: 1}, {Key: "ordering", Value: 1}, {Key: "_id", Value: 1}})
	want := "groupAlias:1, ordering:1, _id:1"
	if got != want {
		t.Errorf("keySig = %q, want %q", got, want)
	}
}

func TestBoolVal(t *testing.T) {
	yes := true
	if boolVal(nil) {
		t.Error("boolVal(nil) should be false")
	}
	if !boolVal(&yes) {
		t.Error("boolVal(&true) should be true")
	}
}
