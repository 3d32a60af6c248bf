package domain

import "time"

type ServiceType string

const (
	ServiceManicure  ServiceType = "MANICURE"
	ServicePedicure  ServiceType = "PEDICURE"
	ServiceBothBasic ServiceType = "BOTH_BASIC"
	ServiceBothFull  ServiceType = "BOTH_FULL"
	ServiceEyebrows  ServiceType = "EYEBROWS"
	ServiceLashes    ServiceType = "LASHES"
)

// ServiceDurations maps each service type to its default duration in minutes.
var ServiceDurations = map[ServiceType]int{
	ServiceManicure:  45,
	ServicePedicure:  60,
	ServiceBothBasic: 90,
	ServiceBothFull:  120,
	ServiceEyebrows:  15,
	ServiceLashes:    60,
}

// ParseServiceType validates a raw service type string. The legacy value
// "BOTH" from the first data backend maps to BOTH_BASIC.
func ParseServiceType(s string) (ServiceType, bool) {
	switch ServiceType(s) {
	case ServiceManicure, ServicePedicure, ServiceBothBasic, ServiceBothFull, ServiceEyebrows, ServiceLashes:
		return ServiceType(s), true
	case "BOTH":
		return ServiceBothBasic, true
	default:
		return "", false
	}
}

// DisplayNames for service types, keyed by language code.
var serviceNames = map[ServiceType]map[string]string{
	ServiceManicure:  {"en": "Manicure", "ar": "مانيكير"},
	ServicePedicure:  {"en": "Pedicure", "ar": "باديكير"},
	ServiceBothBasic: {"en": "Basic Manicure & Pedicure", "ar": "مانيكير و باديكير أساسي"},
	ServiceBothFull:  {"en": "Full Manicure & Pedicure", "ar": "مانيكير و باديكير كامل"},
	ServiceEyebrows:  {"en": "Eyebrows", "ar": "حواجب"},
	ServiceLashes:    {"en": "Lashes", "ar": "رموش"},
}

func (t ServiceType) DisplayName(lang string) string {
	names, ok := serviceNames[t]
	if !ok {
		return string(t)
	}
	if name, ok := names[lang]; ok {
		return name
	}
	return names["en"]
}

type Appointment struct {
	ID          int64       `json:"id"`
	UserID      int64       `json:"user_id"`
	Type        ServiceType `json:"type"`
	StartAt     time.Time   `json:"start_at"`
	DurationMin int         `json:"duration_min"`
	Notes       string      `json:"notes"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`

	// Client fields joined from users for list views.
	ClientName  string `json:"client_name,omitempty"`
	ClientPhone string `json:"client_phone,omitempty"`
}

// AppointmentReq is a create submission. The client is resolved either by
// UserID or by raw Name+Phone (found-or-created by phone).
type AppointmentReq struct {
	UserID   int64  `json:"user_id,omitempty"`
	Name     string `json:"name,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Type     string `json:"type"`
	Time     string `json:"time"`
	Date     string `json:"date,omitempty"`
	Duration int    `json:"duration,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// AppointmentPatch carries partial update fields. Nil means unchanged.
type AppointmentPatch struct {
	UserID   *int64  `json:"user_id,omitempty"`
	Type     *string `json:"type,omitempty"`
	Time     *string `json:"time,omitempty"`
	Date     *string `json:"date,omitempty"`
	Duration *int    `json:"duration,omitempty"`
	Notes    *string `json:"notes,omitempty"`
}

// EndAt is the appointment end derived from its duration.
func (a *Appointment) EndAt() time.Time {
	return a.StartAt.Add(time.Duration(a.DurationMin) * time.Minute)
}
