package domain

import (
	"time"

	"github.com/google/uuid"
)

// Enumerations
const (
	RoleAdmin      OperatorRole = "admin"
	RoleSupervisor OperatorRole = "supervisor"
	RoleOperator   OperatorRole = "operator"

	ClassCar        VehicleClass = "car"
	ClassMotorcycle VehicleClass = "motorcycle"

	SpaceAvailable   SpaceState = "available"
	SpaceOccupied    SpaceState = "occupied"
	SpaceMaintenance SpaceState = "maintenance"

	PaymentPending PaymentState = "pending"
	PaymentPaid    PaymentState = "paid"

	PayCash   PaymentMethod = "cash"
	PayCard   PaymentMethod = "card"
	PayWallet PaymentMethod = "wallet"

	ShiftOpen   ShiftState = "open"
	ShiftClosed ShiftState = "closed"
)

type OperatorRole string
type VehicleClass string
type SpaceState string
type PaymentState string
type PaymentMethod string
type ShiftState string

func (c VehicleClass) Valid() bool {
	return c == ClassCar || c == ClassMotorcycle
}

func (m PaymentMethod) Valid() bool {
	return m == PayCash || m == PayCard || m == PayWallet
}

// Money is an amount in currency minor units (cents).
type Money struct {
	Amount   int64
	Currency string
}

type Space struct {
	Number         int
	VehicleClass   VehicleClass
	State          SpaceState
	LastOccupiedAt *time.Time
}

// ParkingSession is the historical record of one stay. ExitAt, Amount and
// PaymentMethod are set together by the single closing update; a session with
// ExitAt == nil is active and payment-pending.
type ParkingSession struct {
	ID            uuid.UUID
	Plate         string
	VehicleClass  VehicleClass
	SpaceNumber   int
	EntryAt       time.Time
	ExitAt        *time.Time
	Amount        *Money
	PaymentState  PaymentState
	PaymentMethod *PaymentMethod
	OperatorID    int64
	OperatorName  string
}

func (s ParkingSession) Active() bool {
	return s.ExitAt == nil
}

// WeekdayMask is a 7-bit weekday set, bit 0 = Sunday (time.Weekday order).
type WeekdayMask uint8

const (
	weekendMask WeekdayMask = 1<<uint(time.Saturday) | 1<<uint(time.Sunday)
	// EveryDay covers all seven weekdays.
	EveryDay WeekdayMask = 0x7f
	// Weekdays covers Monday through Friday.
	Weekdays WeekdayMask = EveryDay &^ weekendMask
	// Weekend covers Saturday and Sunday.
	Weekend WeekdayMask = weekendMask
)

func MaskOf(days ...time.Weekday) WeekdayMask {
	var m WeekdayMask
	for _, d := range days {
		m |= 1 << uint(d)
	}
	return m
}

func (m WeekdayMask) Contains(d time.Weekday) bool {
	return m&(1<<uint(d)) != 0
}

// WeekendOnly reports whether the mask covers no day outside Saturday/Sunday.
func (m WeekdayMask) WeekendOnly() bool {
	return m != 0 && m&^weekendMask == 0
}

// TariffRule prices one vehicle class inside a weekly time window. Rates and
// charges are minor units; StartMinute/EndMinute are minutes since midnight
// and the [start,end) window may wrap past midnight (night tariffs).
type TariffRule struct {
	ID                 int64
	Name               string
	VehicleClass       VehicleClass
	Weekdays           WeekdayMask
	StartMinute        int
	EndMinute          int
	FirstHourRate      int64
	AdditionalHourRate int64
	MinimumCharge      int64
	MaximumCharge      *int64
	Priority           int
	Active             bool
}

// WindowContains reports whether a minute-of-day falls inside [start,end),
// handling windows that wrap past midnight.
func (r TariffRule) WindowContains(minute int) bool {
	if r.StartMinute == r.EndMinute {
		return true // degenerate window, treat as all day
	}
	if r.StartMinute < r.EndMinute {
		return minute >= r.StartMinute && minute < r.EndMinute
	}
	return minute >= r.StartMinute || minute < r.EndMinute
}

// FullDay reports whether the window spans all 24 hours.
func (r TariffRule) FullDay() bool {
	return r.StartMinute == r.EndMinute || (r.StartMinute == 0 && r.EndMinute == 24*60)
}

// PricingConfig is the garage-wide pricing singleton.
type PricingConfig struct {
	GraceMinutes        int
	RoundingMinutes     int
	NightRulesEnabled   bool
	WeekendRulesEnabled bool
	CurrencyCode        string
	UpdatedAt           time.Time
}

// Shift is one operator's till period. ClosingCash, ExpectedCash and Variance
// are set together by the single closing update.
type Shift struct {
	ID           uuid.UUID
	OperatorID   int64
	OperatorName string
	OpenedAt     time.Time
	OpeningCash  int64
	ClosedAt     *time.Time
	ClosingCash  *int64
	ExpectedCash *int64
	Variance     *int64
	State        ShiftState
	Notes        string
}

type AuditEvent struct {
	ID         int64
	ActorID    int64
	ActorName  string
	Action     string
	EntityType string
	EntityID   string
	Amount     *int64
	Details    string
	LoggedAt   time.Time
}
