package database

import (
	"testing"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type costDoc struct {
	Cost  *decimal.Decimal `bson:"cost,omitempty"`
	Total decimal.Decimal  `bson:"total"`
}

func TestDecimalCodec(t *testing.T) {
	reg := Registry()

	t.Run("stored as Decimal128", func(t *testing.T) {
		cost := decimal.RequireFromString("1.10")
		raw, err := bson.MarshalWithRegistry(reg, costDoc{Cost: &cost, Total: decimal.RequireFromString("3.30")})
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}

		var plain bson.M
		if err := bson.Unmarshal(raw, &plain); err != nil {
			t.Fatalf("unmarshal plain: %v", err)
		}
		if _, ok := plain["cost"].(primitive.Decimal128); !ok {
			t.Errorf("expected cost as Decimal128, got %T", plain["cost"])
		}

		var back costDoc
		if err := bson.UnmarshalWithRegistry(reg, raw, &back); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if back.Cost == nil || !back.Cost.Equal(cost) {
			t.Errorf("expected cost %s, got %v", cost, back.Cost)
		}
		if !back.Total.Equal(decimal.RequireFromString("3.3")) {
			t.Errorf("expected total 3.3, got %s", back.Total)
		}
	})

	t.Run("reads doubles written by other clients", func(t *testing.T) {
		raw, err := bson.Marshal(bson.M{"cost": 2.5, "total": int32(4)})
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}

		var back costDoc
		if err := bson.UnmarshalWithRegistry(reg, raw, &back); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if back.Cost == nil || !back.Cost.Equal(decimal.NewFromFloat(2.5)) {
			t.Errorf("expected cost 2.5, got %v", back.Cost)
		}
		if !back.Total.Equal(decimal.NewFromInt(4)) {
			t.Errorf("expected total 4, got %s", back.Total)
		}
	})

	t.Run("missing cost stays nil", func(t *testing.T) {
		raw, err := bson.MarshalWithRegistry(reg, costDoc{Total: decimal.Zero})
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var back costDoc
		if err := bson.UnmarshalWithRegistry(reg, raw, &back); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if back.Cost != nil {
			t.Errorf("expected nil cost, got %v", back.Cost)
		}
	})
}
