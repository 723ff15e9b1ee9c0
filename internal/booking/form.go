package booking

import (
	"fmt"

	"roomy-backend/internal/model"
)

// Form is the state of one booking form. It is a plain value: every change
// goes through Reduce and yields a new Form.
type Form struct {
	Room      model.Room `json:"sala"`
	Date      string     `json:"fecha"`
	Start     string     `json:"horaInicio"`
	End       string     `json:"horaFin"`
	Available []string   `json:"horariosDisponibles"`
	ShowSlots bool       `json:"mostrarHorarios"`
	Loading   bool       `json:"cargando"`
	Error     string     `json:"error,omitempty"`
	Success   string     `json:"exito,omitempty"`
}

// Action is a change applied to a Form by Reduce.
type Action interface {
	apply(Form) Form
}

type (
	SetRoom            struct{ Room model.Room }
	SetDate            struct{ Date string }
	SetStart           struct{ Start string }
	SetEnd             struct{ End string }
	AvailabilityLoaded struct{ Slots []string }
	AvailabilityFailed struct{}
	SubmitStarted      struct{}
	SubmitSucceeded    struct{ Message string }
	SubmitFailed       struct{ Message string }
	ClearMessages      struct{}
	Reset              struct{}
)

// Reduce returns the form that results from applying a to f.
// A nil action leaves the form unchanged.
func Reduce(f Form, a Action) Form {
	if a == nil {
		return f
	}
	return a.apply(f)
}

// ParseAction maps a field edit coming from a client onto an Action.
// name is the wire name of the field (sala, fecha, horaInicio, horaFin) or
// one of limpiarMensajes and reiniciar.
func ParseAction(name, value string) (Action, error) {
	switch name {
	case "sala":
		return SetRoom{Room: model.Room(value)}, nil
	case "fecha":
		return SetDate{Date: value}, nil
	case "horaInicio":
		return SetStart{Start: value}, nil
	case "horaFin":
		return SetEnd{End: value}, nil
	case "limpiarMensajes":
		return ClearMessages{}, nil
	case "reiniciar":
		return Reset{}, nil
	}
	return nil, fmt.Errorf("unknown form action %q", name)
}

// Request builds the reservation request the form currently describes.
func (f Form) Request() model.ReservationRequest {
	return model.ReservationRequest{Room: f.Room, Date: f.Date, StartTime: f.Start, EndTime: f.End}
}

// clearSelection drops everything that depends on room and date.
func (f Form) clearSelection() Form {
	f.Start = ""
	f.End = ""
	f.Available = nil
	f.ShowSlots = false
	return f
}

// Editing any field clears the previous outcome message.

func (a SetRoom) apply(f Form) Form {
	f = ClearMessages{}.apply(f)
	if a.Room == f.Room {
		return f
	}
	f = f.clearSelection()
	f.Room = a.Room
	return f
}

func (a SetDate) apply(f Form) Form {
	f = ClearMessages{}.apply(f)
	if a.Date == f.Date {
		return f
	}
	f = f.clearSelection()
	f.Date = a.Date
	return f
}

func (a SetStart) apply(f Form) Form {
	f = ClearMessages{}.apply(f)
	if a.Start != f.Start {
		f.End = ""
	}
	f.Start = a.Start
	return f
}

func (a SetEnd) apply(f Form) Form {
	f = ClearMessages{}.apply(f)
	f.End = a.End
	return f
}

func (a AvailabilityLoaded) apply(f Form) Form {
	f.Available = append([]string(nil), a.Slots...)
	f.ShowSlots = true
	return f
}

func (AvailabilityFailed) apply(f Form) Form {
	f.Available = []string{}
	f.ShowSlots = false
	return f
}

func (SubmitStarted) apply(f Form) Form {
	if f.Loading {
		return f
	}
	f.Loading = true
	f.Error = ""
	f.Success = ""
	return f
}

func (a SubmitSucceeded) apply(f Form) Form {
	f.Loading = false
	f.Error = ""
	f.Success = a.Message
	return f
}

func (a SubmitFailed) apply(f Form) Form {
	f.Loading = false
	f.Error = a.Message
	f.Success = ""
	return f
}

func (ClearMessages) apply(f Form) Form {
	f.Error = ""
	f.Success = ""
	return f
}

func (Reset) apply(Form) Form {
	return Form{}
}
