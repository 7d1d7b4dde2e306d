package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"

	"gitlab.com/timkado/api/daisi-meal-photo-bot/pkg/utils"
)

func init() {
	gofakeit.Seed(time.Now().UnixNano())
}

func fakeNumber(min, max int) json.Number {
	return json.Number(fmt.Sprintf("%d", gofakeit.Number(min, max)))
}

// NewFoodItem creates a FoodItem with fake data.
func NewFoodItem() FoodItem {
	return FoodItem{
		Name:     gofakeit.Dinner(),
		Portion:  fmt.Sprintf("%dg", gofakeit.Number(50, 400)),
		Calories: fakeNumber(50, 900),
		Protein:  fakeNumber(0, 60),
		Carbs:    fakeNumber(0, 120),
		Fats:     fakeNumber(0, 50),
	}
}

// NewNutritionAnalysis creates a valid NutritionAnalysis. A non-nil override replaces the whole value.
func NewNutritionAnalysis(overrideDefaults ...*NutritionAnalysis) *NutritionAnalysis {
	if len(overrideDefaults) > 0 && overrideDefaults[0] != nil {
		ovr := *overrideDefaults[0]
		return &ovr
	}
	foods := make([]FoodItem, gofakeit.Number(1, 4))
	for i := range foods {
		foods[i] = NewFoodItem()
	}
	return &NutritionAnalysis{
		Foods: foods,
		Totals: &Totals{
			Calories: fakeNumber(200, 1500),
			Protein:  fakeNumber(5, 90),
			Carbs:    fakeNumber(10, 200),
			Fats:     fakeNumber(5, 80),
		},
		HealthScore: gofakeit.Number(1, 10),
		Tip:         gofakeit.Sentence(8),
	}
}

// NewUser creates a User with a fake E.164 phone number. Non-empty override fields win.
func NewUser(overrideDefaults ...*User) *User {
	base := &User{
		ID:          uuid.NewString(),
		PhoneNumber: "+1" + gofakeit.Numerify("##########"),
		Name:        gofakeit.Name(),
		CreatedAt:   utils.Now().Add(-time.Duration(gofakeit.Number(1, 1000)) * time.Hour),
		UpdatedAt:   utils.Now(),
	}
	if len(overrideDefaults) > 0 && overrideDefaults[0] != nil {
		ovr := overrideDefaults[0]
		if ovr.ID != "" {
			base.ID = ovr.ID
		}
		if ovr.PhoneNumber != "" {
			base.PhoneNumber = ovr.PhoneNumber
		}
		if ovr.Name != "" {
			base.Name = ovr.Name
		}
	}
	return base
}

// NewInboundMessage creates a text InboundMessage from provider. Non-empty override fields win.
func NewInboundMessage(provider Provider, overrideDefaults ...*InboundMessage) *InboundMessage {
	phone := "+1" + gofakeit.Numerify("##########")
	base := &InboundMessage{
		SenderID:   phone,
		ReplyTo:    phone,
		Text:       gofakeit.Word(),
		Provider:   provider,
		MessageID:  gofakeit.UUID(),
		ReceivedAt: utils.Now(),
	}
	if provider == ProviderTwilio {
		base.ReplyTo = "whatsapp:" + phone
	}
	if len(overrideDefaults) > 0 && overrideDefaults[0] != nil {
		ovr := overrideDefaults[0]
		if ovr.SenderID != "" {
			base.SenderID = ovr.SenderID
		}
		if ovr.ReplyTo != "" {
			base.ReplyTo = ovr.ReplyTo
		}
		base.Text = ovr.Text
		base.MediaURL = ovr.MediaURL
		base.HasMedia = ovr.HasMedia
	}
	return base
}
