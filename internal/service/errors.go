package service

import "errors"

// Booking errors surfaced to the UI. Each rejected attempt carries a
// distinct, human-readable cause: the slot was just taken, the time has
// passed the cutoff, or the doctor has no working window there.
var (
	ErrSlotNoLongerAvailable = errors.New("this slot is no longer available, it may have just been booked")
	ErrSlotInPast            = errors.New("that time has already passed or is too close to book")
	ErrDoctorNotWorking      = errors.New("this doctor does not work at the requested time")
	ErrDoctorInactive        = errors.New("this doctor is no longer accepting appointments")
	ErrReasonRequired        = errors.New("a reason is required")
	ErrInvalidTransition     = errors.New("the appointment cannot change to that state")
	ErrValidation            = errors.New("invalid input")
)
