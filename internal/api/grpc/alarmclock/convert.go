package alarmclock

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/platform/permission"
)

// Document field names.
const (
	fieldFireAt       = "fire_at"
	fieldMessage      = "message"
	fieldKey          = "key"
	fieldPhase        = "phase"
	fieldArmed        = "armed"
	fieldCancelled    = "cancelled"
	fieldRecord       = "record"
	fieldOpen         = "open"
	fieldShownAt      = "shown_at"
	fieldInstances    = "instances"
	fieldRedeliveries = "redeliveries"
	fieldDismissed    = "dismissed"
	fieldPermission   = "permission"
	fieldGranted      = "granted"
	fieldPermissions  = "permissions"
)

var (
	// errFieldMissing is returned when a required document field is absent.
	errFieldMissing = errors.New("required field is missing")
	// errFieldType is returned when a field has an unexpected type.
	errFieldType = errors.New("field has unexpected type")
)

// ScheduleRequest is the decoded Schedule request.
type ScheduleRequest struct {
	// FireAt is the requested alarm time.
	FireAt time.Time
	// Message is the alarm message, possibly empty.
	Message string
}

// Alert is the decoded GetAlert response.
type Alert struct {
	// Open is true while the surface is shown.
	Open bool
	// Message is the displayed message.
	Message string
	// ShownAt is when the message was displayed.
	ShownAt time.Time
	// Instances counts surfaces created since the daemon started.
	Instances int
	// Redeliveries counts messages replaced in an open surface.
	Redeliveries int
}

// EncodeScheduleRequest builds a Schedule request.
//
//	{"fire_at": RFC3339, "message": string}
func EncodeScheduleRequest(fireAt time.Time, message string) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		fieldFireAt:  fireAt.Format(time.RFC3339Nano),
		fieldMessage: message,
	})
}

// DecodeScheduleRequest parses a Schedule request.
func DecodeScheduleRequest(req *structpb.Struct) (*ScheduleRequest, error) {
	fields := req.GetFields()

	fireAt, err := timeField(fields, fieldFireAt)
	if err != nil {
		return nil, err
	}

	return &ScheduleRequest{
		FireAt:  fireAt,
		Message: fields[fieldMessage].GetStringValue(),
	}, nil
}

// EncodeState builds a status document.
//
//	{"phase": "empty"|"armed", "armed": {"key", "fire_at", "message"}?}
func EncodeState(state *domain.State) (*structpb.Struct, error) {
	document := map[string]any{
		fieldPhase: string(domain.PhaseEmpty),
	}

	if state != nil {
		document[fieldPhase] = string(state.Phase)
		if state.Armed != nil {
			document[fieldArmed] = recordDocument(*state.Armed)
		}
	}

	return structpb.NewStruct(document)
}

// DecodeState parses a status document.
func DecodeState(doc *structpb.Struct) (*domain.State, error) {
	fields := doc.GetFields()

	state := &domain.State{
		Phase: domain.Phase(fields[fieldPhase].GetStringValue()),
	}

	if armed := fields[fieldArmed].GetStructValue(); armed != nil {
		record, err := decodeRecord(armed)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", fieldArmed, err)
		}

		state.Armed = &record
	}

	return state, nil
}

// EncodeCancelResult builds a Cancel response.
//
//	{"cancelled": bool, "record": {...}?}
func EncodeCancelResult(record domain.Record, cancelled bool) (*structpb.Struct, error) {
	document := map[string]any{
		fieldCancelled: cancelled,
	}

	if cancelled {
		document[fieldRecord] = recordDocument(record)
	}

	return structpb.NewStruct(document)
}

// DecodeCancelResult parses a Cancel response.
func DecodeCancelResult(doc *structpb.Struct) (domain.Record, bool, error) {
	fields := doc.GetFields()
	if !fields[fieldCancelled].GetBoolValue() {
		return domain.Record{}, false, nil
	}

	record, err := decodeRecord(fields[fieldRecord].GetStructValue())
	if err != nil {
		return domain.Record{}, false, fmt.Errorf("%s: %w", fieldRecord, err)
	}

	return record, true, nil
}

// EncodeAlert builds a GetAlert response.
//
//	{"open", "message", "shown_at"?, "instances", "redeliveries"}
func EncodeAlert(alert Alert) (*structpb.Struct, error) {
	document := map[string]any{
		fieldOpen:         alert.Open,
		fieldMessage:      alert.Message,
		fieldInstances:    alert.Instances,
		fieldRedeliveries: alert.Redeliveries,
	}

	if !alert.ShownAt.IsZero() {
		document[fieldShownAt] = alert.ShownAt.Format(time.RFC3339Nano)
	}

	return structpb.NewStruct(document)
}

// DecodeAlert parses a GetAlert response.
func DecodeAlert(doc *structpb.Struct) (*Alert, error) {
	fields := doc.GetFields()

	alert := &Alert{
		Open:         fields[fieldOpen].GetBoolValue(),
		Message:      fields[fieldMessage].GetStringValue(),
		Instances:    int(fields[fieldInstances].GetNumberValue()),
		Redeliveries: int(fields[fieldRedeliveries].GetNumberValue()),
	}

	if _, ok := fields[fieldShownAt]; ok {
		shownAt, err := timeField(fields, fieldShownAt)
		if err != nil {
			return nil, err
		}

		alert.ShownAt = shownAt
	}

	return alert, nil
}

// EncodeDismissResult builds a Dismiss response: {"dismissed": bool}.
func EncodeDismissResult(dismissed bool) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		fieldDismissed: dismissed,
	})
}

// DecodeDismissResult parses a Dismiss response.
func DecodeDismissResult(doc *structpb.Struct) bool {
	return doc.GetFields()[fieldDismissed].GetBoolValue()
}

// EncodePermissionRequest builds a SetPermission request.
//
//	{"permission": string, "granted": bool}
func EncodePermissionRequest(p permission.Permission, granted bool) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		fieldPermission: string(p),
		fieldGranted:    granted,
	})
}

// DecodePermissionRequest parses a SetPermission request.
func DecodePermissionRequest(req *structpb.Struct) (permission.Permission, bool, error) {
	fields := req.GetFields()

	value, ok := fields[fieldPermission]
	if !ok {
		return "", false, fmt.Errorf("%s: %w", fieldPermission, errFieldMissing)
	}

	p, err := permission.Parse(value.GetStringValue())
	if err != nil {
		return "", false, err
	}

	return p, fields[fieldGranted].GetBoolValue(), nil
}

// EncodePermissions builds a permissions document.
//
//	{"permissions": {"exact_alarm": "granted"|"denied", ...}}
func EncodePermissions(outcomes map[permission.Permission]permission.Outcome) (*structpb.Struct, error) {
	inner := make(map[string]any, len(outcomes))
	for p, outcome := range outcomes {
		inner[string(p)] = outcome.String()
	}

	return structpb.NewStruct(map[string]any{
		fieldPermissions: inner,
	})
}

// PermissionLine is one decoded permission state.
type PermissionLine struct {
	// Permission is the capability name.
	Permission permission.Permission
	// Granted reports whether it is held.
	Granted bool
}

// DecodePermissions parses a permissions document ordered by name.
func DecodePermissions(doc *structpb.Struct) []PermissionLine {
	inner := doc.GetFields()[fieldPermissions].GetStructValue().GetFields()

	result := make([]PermissionLine, 0, len(inner))
	for name, value := range inner {
		result = append(result, PermissionLine{
			Permission: permission.Permission(name),
			Granted:    value.GetStringValue() == permission.Granted.String(),
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Permission < result[j].Permission
	})

	return result
}

func recordDocument(r domain.Record) map[string]any {
	return map[string]any{
		fieldKey:     r.Key().String(),
		fieldFireAt:  r.FireAt.Format(time.RFC3339Nano),
		fieldMessage: r.Message,
	}
}

func decodeRecord(doc *structpb.Struct) (domain.Record, error) {
	if doc == nil {
		return domain.Record{}, errFieldMissing
	}

	fields := doc.GetFields()

	fireAt, err := timeField(fields, fieldFireAt)
	if err != nil {
		return domain.Record{}, err
	}

	return domain.NewRecord(fireAt, fields[fieldMessage].GetStringValue()), nil
}

func timeField(fields map[string]*structpb.Value, name string) (time.Time, error) {
	value, ok := fields[name]
	if !ok {
		return time.Time{}, fmt.Errorf("%s: %w", name, errFieldMissing)
	}

	s, ok := value.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return time.Time{}, fmt.Errorf("%s: %w", name, errFieldType)
	}

	t, err := time.Parse(time.RFC3339Nano, s.StringValue)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", name, err)
	}

	return t.Local(), nil
}
