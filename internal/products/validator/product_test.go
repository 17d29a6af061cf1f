package validator

import (
	"strings"
	"testing"

	"vntrips/pkg/model"
)

func validTour() *model.Product {
	return &model.Product{
		Title:      model.LocalizedText{En: "Mekong Delta Cruise", Vi: "Du thuyền Đồng bằng sông Cửu Long"},
		CategoryID: "65a000000000000000000101",
		Pricing:    model.Pricing{Adult: 65, Currency: "USD"},
		Duration:   &model.Duration{Days: 2, Nights: 1},
	}
}

func validTransfer() *model.Product {
	return &model.Product{
		Title:      model.LocalizedText{En: "Hanoi Airport Transfer", Vi: "Đưa đón sân bay Hà Nội"},
		CategoryID: "65a000000000000000000102",
		Pricing:    model.Pricing{PerTrip: 25, Currency: "USD"},
		TransferService: &model.TransferService{
			Type:  model.VehicleSedan,
			Seats: 4,
		},
	}
}

func TestValidate_AcceptsWellFormedProducts(t *testing.T) {
	v := NewProductValidator()

	if err := v.Validate(validTour(), model.TypeVietnamTours); err != nil {
		t.Errorf("valid tour rejected: %v", err)
	}
	if err := v.Validate(validTransfer(), model.TypeTransferServices); err != nil {
		t.Errorf("valid transfer rejected: %v", err)
	}
}

func TestValidate_BilingualTitleRequired(t *testing.T) {
	v := NewProductValidator()

	p := validTour()
	p.Title.Vi = ""
	if err := v.Validate(p, model.TypeVietnamTours); err == nil {
		t.Error("missing vietnamese title accepted")
	}
}

func TestValidate_TourRules(t *testing.T) {
	v := NewProductValidator()

	p := validTour()
	p.Duration = nil
	if err := v.Validate(p, model.TypeVietnamTours); err == nil {
		t.Error("tour without duration accepted")
	}

	p = validTour()
	p.TransferService = validTransfer().TransferService
	if err := v.Validate(p, model.TypeVietnamTours); err == nil {
		t.Error("tour with transfer metadata accepted")
	}

	p = validTour()
	p.Pricing.Adult = 0
	if err := v.Validate(p, model.TypeVietnamTours); err == nil {
		t.Error("tour without adult price accepted")
	}
}

func TestValidate_TransferRules(t *testing.T) {
	v := NewProductValidator()

	p := validTransfer()
	p.TransferService = nil
	if err := v.Validate(p, model.TypeTransferServices); err == nil {
		t.Error("transfer without metadata accepted")
	}

	p = validTransfer()
	p.Itinerary = []model.ItineraryDay{{Day: 1}}
	if err := v.Validate(p, model.TypeTransferServices); err == nil {
		t.Error("transfer with itinerary accepted")
	}

	p = validTransfer()
	p.Pricing = model.Pricing{Currency: "USD"}
	if err := v.Validate(p, model.TypeTransferServices); err == nil {
		t.Error("transfer without any price accepted")
	}
}

func TestValidate_ShortDescriptionLength(t *testing.T) {
	v := NewProductValidator()

	p := validTour()
	p.ShortDescription = model.LocalizedText{
		En: strings.Repeat("a", maxShortDescription),
		Vi: strings.Repeat("ă", maxShortDescription),
	}
	if err := v.Validate(p, model.TypeVietnamTours); err != nil {
		t.Errorf("short description at the limit rejected: %v", err)
	}

	p.ShortDescription.Vi = strings.Repeat("ă", maxShortDescription+1)
	if err := v.Validate(p, model.TypeVietnamTours); err == nil {
		t.Error("oversized short description accepted")
	}
}

func TestValidate_ItineraryNumbering(t *testing.T) {
	v := NewProductValidator()

	p := validTour()
	p.Itinerary = []model.ItineraryDay{
		{Day: 1, Title: model.LocalizedText{En: "Arrival"}},
		{Day: 3, Title: model.LocalizedText{En: "Gap day"}},
	}
	if err := v.Validate(p, model.TypeVietnamTours); err == nil {
		t.Error("itinerary with gap in day numbering accepted")
	}
}

func TestValidate_NightsCannotExceedDays(t *testing.T) {
	v := NewProductValidator()

	p := validTour()
	p.Duration = &model.Duration{Days: 1, Nights: 2}
	if err := v.Validate(p, model.TypeVietnamTours); err == nil {
		t.Error("duration with nights > days accepted")
	}
}
