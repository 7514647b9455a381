package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
	BookingCompleted BookingStatus = "COMPLETED"
)

type CustomerStatus string

const (
	CustomerActive      CustomerStatus = "ACTIVE"
	CustomerDeactivated CustomerStatus = "DEACTIVATED"
)

// InvalidStatusError is returned when a status string is not a known enum value.
type InvalidStatusError struct {
	Kind  string
	Value string
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("invalid %s status %q", e.Kind, e.Value)
}

var bookingStatuses = map[string]BookingStatus{
	string(BookingPending):   BookingPending,
	string(BookingConfirmed): BookingConfirmed,
	string(BookingCancelled): BookingCancelled,
	string(BookingCompleted): BookingCompleted,
}

var customerStatuses = map[string]CustomerStatus{
	string(CustomerActive):      CustomerActive,
	string(CustomerDeactivated): CustomerDeactivated,
}

// ParseBookingStatus accepts the enum name in any letter case.
func ParseBookingStatus(raw string) (BookingStatus, error) {
	if s, ok := bookingStatuses[strings.ToUpper(strings.TrimSpace(raw))]; ok {
		return s, nil
	}
	return "", &InvalidStatusError{Kind: "booking", Value: raw}
}

// ParseCustomerStatus accepts the enum name in any letter case.
func ParseCustomerStatus(raw string) (CustomerStatus, error) {
	if s, ok := customerStatuses[strings.ToUpper(strings.TrimSpace(raw))]; ok {
		return s, nil
	}
	return "", &InvalidStatusError{Kind: "customer", Value: raw}
}

func (s *BookingStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		*s = ""
		return nil
	}
	parsed, err := ParseBookingStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s *CustomerStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		*s = ""
		return nil
	}
	parsed, err := ParseCustomerStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
