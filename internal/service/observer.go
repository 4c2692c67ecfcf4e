package service

import "irrigation_valve/internal/models"

// Transition reasons reported to observers.
const (
	ReasonStartup         = "startup"
	ReasonToggle          = "toggle"
	ReasonMode            = "mode"
	ReasonSchedule        = "schedule"
	ReasonScheduleEval    = "schedule_eval"
	ReasonOverheatTrip    = "overheat_trip"
	ReasonCooldownElapsed = "cooldown_elapsed"
	ReasonTimerRearm      = "timer_rearm"
	ReasonFactoryReset    = "factory_reset"
)

// Observer is told about every committed transition and every failure to persist or
// actuate. Calls are made while the controller holds its state lock, in transition
// order, so implementations must not block.
type Observer interface {
	StateChanged(st models.Status, reason string)
	PersistFailed(err error)
	RelayFailed(err error)
}

// Observers fans out to several observers.
type Observers []Observer

func (o Observers) StateChanged(st models.Status, reason string) {
	for _, obs := range o {
		obs.StateChanged(st, reason)
	}
}

func (o Observers) PersistFailed(err error) {
	for _, obs := range o {
		obs.PersistFailed(err)
	}
}

func (o Observers) RelayFailed(err error) {
	for _, obs := range o {
		obs.RelayFailed(err)
	}
}
