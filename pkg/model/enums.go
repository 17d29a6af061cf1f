package model

// CategoryType partitions the catalog into its two domains.
type CategoryType string

const (
	TypeVietnamTours     CategoryType = "vietnam-tours"
	TypeTransferServices CategoryType = "transfer-services"
)

func (t CategoryType) Valid() bool {
	return t == TypeVietnamTours || t == TypeTransferServices
}

// Region is the coarse geographic bucket used for catalog filtering.
type Region string

const (
	RegionNorth   Region = "north"
	RegionCentral Region = "central"
	RegionSouth   Region = "south"
	RegionAll     Region = "all"
)

func (r Region) Valid() bool {
	switch r {
	case RegionNorth, RegionCentral, RegionSouth, RegionAll:
		return true
	}
	return false
}

// VehicleType is the single canonical list of transfer vehicle classes.
// Both category transfer metadata and product transfer metadata reference it.
type VehicleType string

const (
	VehicleSedan     VehicleType = "sedan"
	VehicleSUV       VehicleType = "suv"
	VehicleVan       VehicleType = "van"
	VehicleMinibus   VehicleType = "minibus"
	VehicleBus       VehicleType = "bus"
	VehicleLimousine VehicleType = "limousine"
)

// BookingStatus values and their allowed transitions.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
	BookingRefunded  BookingStatus = "refunded"
)

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingCancelled, BookingRefunded},
	BookingConfirmed: {BookingCompleted, BookingCancelled, BookingRefunded},
}

// CanTransition reports whether a booking may move from one status to another.
// Completed, cancelled and refunded are terminal.
func (s BookingStatus) CanTransition(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s BookingStatus) Terminal() bool {
	return len(bookingTransitions[s]) == 0
}

// ConsultationStatus progression: new → contacted → in-progress → completed,
// with cancelled reachable from any non-terminal state.
type ConsultationStatus string

const (
	ConsultationNew        ConsultationStatus = "new"
	ConsultationContacted  ConsultationStatus = "contacted"
	ConsultationInProgress ConsultationStatus = "in-progress"
	ConsultationCompleted  ConsultationStatus = "completed"
	ConsultationCancelled  ConsultationStatus = "cancelled"
)

var consultationOrder = map[ConsultationStatus]int{
	ConsultationNew:        0,
	ConsultationContacted:  1,
	ConsultationInProgress: 2,
	ConsultationCompleted:  3,
}

func (s ConsultationStatus) CanTransition(next ConsultationStatus) bool {
	if s == ConsultationCompleted || s == ConsultationCancelled {
		return false
	}
	if next == ConsultationCancelled {
		return true
	}
	cur, ok := consultationOrder[s]
	if !ok {
		return false
	}
	nxt, ok := consultationOrder[next]
	if !ok {
		return false
	}
	return nxt == cur+1
}
