// Package types defines the diagnostic record value types: event
// snapshots, typed parameter stores, causal traces, and the three
// record variants built from them.
//
// Everything here is a plain, single-threaded value object. There is
// no I/O and no internal synchronization; EStruct values are immutable
// and may be shared freely, while Parameters instances are exclusively
// owned by whichever record embeds them.
//
//nolint:revive // types is a common Go package naming convention
package types

import (
	"fmt"
	"strconv"

	"fortio.org/safecast"
)

// Defaults applied by EStructFromProtocol when only a protocol is known.
const (
	// DefaultSymbol is the symbol assigned to underspecified events.
	DefaultSymbol = "Unspecified"
	// DefaultAbstract is the abstract assigned to underspecified events.
	DefaultAbstract = "event snapshot created without abstract"
)

// EStruct is a snapshot of the core information identifying one kind of
// event: the authority that defines it, its canonical string and integer
// forms, a symbolic label, and a one-sentence abstract.
//
// Instances are snapshots that may be serialized long before they are
// formatted for display, so producers should fill in as much as they can.
// An EStruct must not be modified after construction; treat every field
// as write-once.
type EStruct struct {
	// Protocol is the URI or symbol identifying the set of events this
	// instance belongs to — the authority specifying the event's
	// semantics. Must not be localized.
	Protocol string `msgpack:"protocol" json:"protocol"`

	// Identifier is the preferred string representation of Code.
	// For integer-coded protocols this is normally the decimal string,
	// unless the protocol commonly uses another rendering (SQL state
	// codes, for example). It must not be the symbolic name: the POSIX
	// define "EINTR" is a Symbol, not an Identifier.
	// Must not be localized.
	Identifier string `msgpack:"identifier" json:"identifier"`

	// Code is the integer form of Identifier, or zero if none exists.
	Code int `msgpack:"code" json:"code"`

	// Symbol is the symbolic name, label, or title of the event; often
	// an error-constant name or a class name. For formless protocols the
	// symbol may be the only usable identification.
	// Must not be localized.
	Symbol string `msgpack:"symbol" json:"symbol"`

	// Abstract is a single-sentence description of the event. It may be
	// localized and must not contain formatting codes; friendlier
	// human-readable text is the job of a reporting pipeline.
	Abstract string `msgpack:"abstract" json:"abstract"`
}

// EStructFromProtocol creates an event snapshot from a protocol alone,
// filling every other field with its documented default.
func EStructFromProtocol(protocol string) EStruct {
	return EStruct{
		Protocol: protocol,
		Symbol:   DefaultSymbol,
		Abstract: DefaultAbstract,
	}
}

// EStructFromArguments creates an event snapshot from all five fields,
// positioned consistently with the serialized field order.
func EStructFromArguments(protocol, identifier string, code int, symbol, abstract string) EStruct {
	return EStruct{
		Protocol:   protocol,
		Identifier: identifier,
		Code:       code,
		Symbol:     symbol,
		Abstract:   abstract,
	}
}

// EStructFromFields creates an event snapshot from an ordered field
// sequence, expecting at least five elements in this order:
//
//  1. Protocol as a string.
//  2. String Identifier.
//  3. Integer Code.
//  4. Symbol.
//  5. Abstract.
//
// Trailing elements beyond the fifth are ignored so that producers may
// append fields without breaking older consumers.
func EStructFromFields(fields []any) (EStruct, error) {
	if len(fields) < 5 {
		return EStruct{}, fmt.Errorf("estruct requires 5 fields, got %d", len(fields))
	}

	protocol, ok := fields[0].(string)
	if !ok {
		return EStruct{}, fmt.Errorf("estruct field 0 (protocol): expected string, got %T", fields[0])
	}
	identifier, ok := fields[1].(string)
	if !ok {
		return EStruct{}, fmt.Errorf("estruct field 1 (identifier): expected string, got %T", fields[1])
	}
	code, err := fieldCode(fields[2])
	if err != nil {
		return EStruct{}, err
	}
	symbol, ok := fields[3].(string)
	if !ok {
		return EStruct{}, fmt.Errorf("estruct field 3 (symbol): expected string, got %T", fields[3])
	}
	abstract, ok := fields[4].(string)
	if !ok {
		return EStruct{}, fmt.Errorf("estruct field 4 (abstract): expected string, got %T", fields[4])
	}

	return EStruct{
		Protocol:   protocol,
		Identifier: identifier,
		Code:       code,
		Symbol:     symbol,
		Abstract:   abstract,
	}, nil
}

// fieldCode accepts the integer widths a decoder may hand back for the
// code field and narrows them to int, rejecting out-of-range values.
func fieldCode(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int8:
		return int(n), nil
	case int16:
		return int(n), nil
	case int32:
		return int(n), nil
	case int64:
		return safecast.Conv[int](n)
	case uint:
		return safecast.Conv[int](n)
	case uint8:
		return int(n), nil
	case uint16:
		return int(n), nil
	case uint32:
		return safecast.Conv[int](n)
	case uint64:
		return safecast.Conv[int](n)
	default:
		return 0, fmt.Errorf("estruct field 2 (code): expected integer, got %T", v)
	}
}

// String renders the snapshot for debugging. When the decimal form of
// Code differs from Identifier both are shown; otherwise the redundant
// numeric form is omitted:
//
//	<[posix.errno#4] EINTR: 'Interrupted system call'>
func (e EStruct) String() string {
	if strconv.Itoa(e.Code) != e.Identifier {
		return fmt.Sprintf("<[%s#%s:%d] %s: '%s'>", e.Protocol, e.Identifier, e.Code, e.Symbol, e.Abstract)
	}
	return fmt.Sprintf("<[%s#%s] %s: '%s'>", e.Protocol, e.Identifier, e.Symbol, e.Abstract)
}
