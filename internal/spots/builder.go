// Package spots maps BRQ detail records to downstream spot pre-booking
// lines and pages them for upload.
package spots

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/csg33k/brq-ebookings/internal/domain"
)

// ErrInvalidDate is returned for a detail whose WCDate does not parse.
var ErrInvalidDate = errors.New("spots: invalid WCDate")

const (
	BusinessTypeCode = "PDS"
	BookingType      = 2
	VersionNumber    = 1

	TimestampLayout = "2006-01-02T15:04:05"
	dateLayout      = "2006-01-02"
)

// Booking modifier tokens for multi-part spots.
const (
	modMultipartParent = "TP"
	modMultipartMiddle = "MD"
	modMultipartTail   = "TA"
)

// StationLookup resolves a BCC station code. *salesarea.Index satisfies it.
type StationLookup interface {
	LookupStation(stationID string) (domain.SalesArea, error)
}

type Builder struct {
	index StationLookup
	now   func() time.Time
	log   *slog.Logger
}

type Option func(*Builder)

// WithClock sets the clock used for the payload timestamp.
func WithClock(now func() time.Time) Option { return func(b *Builder) { b.now = now } }

func WithLogger(l *slog.Logger) Option { return func(b *Builder) { b.log = l } }

func NewBuilder(index StationLookup, opts ...Option) *Builder {
	b := &Builder{index: index, now: time.Now, log: slog.Default()}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Build maps details to booking lines for campaignNumber.
//
// A detail carrying TP absorbs the run of details directly after it that
// carry MD or TA; they become its multiparts rather than lines of their own.
// Lines are numbered from 1 in output order.
func (b *Builder) Build(details []domain.Detail, campaignNumber int) (*domain.SpotPayload, error) {
	lines := make([]domain.SpotPreBookingDetail, 0, len(details))
	for i := 0; i < len(details); i++ {
		d := &details[i]
		line, err := b.line(d, campaignNumber, len(lines)+1)
		if err != nil {
			return nil, fmt.Errorf("detail %d: %w", i+1, err)
		}
		line.SourceIndex = i

		if d.HasModifier(modMultipartParent) {
			for i+1 < len(details) && isContinuation(&details[i+1]) {
				i++
				line.Multiparts = append(line.Multiparts, domain.Multipart{
					Length: details[i].RequestedSize,
					Rate:   details[i].RequestedGrossRate,
				})
			}
			if len(line.Multiparts) > 0 {
				b.log.Debug("multipart spot", "line", line.LineNumber, "parts", len(line.Multiparts)+1)
			}
		}
		lines = append(lines, line)
	}
	return &domain.SpotPayload{
		DateTimeStamp:         b.now().Format(TimestampLayout),
		SpotPreBookingDetails: lines,
	}, nil
}

func isContinuation(d *domain.Detail) bool {
	return d.HasModifier(modMultipartMiddle) || d.HasModifier(modMultipartTail)
}

func (b *Builder) line(d *domain.Detail, campaignNumber, lineNumber int) (domain.SpotPreBookingDetail, error) {
	sa, err := b.index.LookupStation(d.StationId)
	if err != nil {
		return domain.SpotPreBookingDetail{}, err
	}
	wc, err := d.WeekCommencing()
	if err != nil {
		return domain.SpotPreBookingDetail{}, fmt.Errorf("%w %q", ErrInvalidDate, d.WCDate)
	}
	start, end := SlotTimes(d.RequestedTime)
	return domain.SpotPreBookingDetail{
		CampaignNumber:     campaignNumber,
		LineNumber:         lineNumber,
		VersionNumber:      VersionNumber,
		SpotSalesAreaCode:  sa.Code,
		BreakSalesAreaCode: sa.BreakCode,
		ScheduledDate:      wc.AddDate(0, 0, FirstRequestedDay(d.RequestedDay)).Format(dateLayout),
		SlotStartTime:      start,
		SlotEndTime:        end,
		Length:             d.RequestedSize,
		BusinessTypeCode:   BusinessTypeCode,
		BookingType:        BookingType,
		ExtraFloatData1:    d.DemographicOneTarp,
		ExtraFloatData2:    d.RequestedGrossRate,
		ExtraStringData1:   d.RequestedProgram,
		ExtraStringData2:   d.RequestedDay,
		ExtraDateData1:     wc.Format(dateLayout),
	}, nil
}

// FirstRequestedDay is the offset from the week-commencing date of the first
// "Y" in a Monday-first day mask, or 0 when no day is requested.
func FirstRequestedDay(mask string) int {
	if i := strings.IndexByte(strings.TrimSpace(mask), 'Y'); i >= 0 {
		return i
	}
	return 0
}

// SlotTimes splits an HHMMHHMM range into HH:MM:00 start and end times.
// A short value is right-padded with zeros.
func SlotTimes(hhmmhhmm string) (start, end string) {
	t := hhmmhhmm
	if len(t) < 8 {
		t += strings.Repeat("0", 8-len(t))
	}
	return t[0:2] + ":" + t[2:4] + ":00", t[4:6] + ":" + t[6:8] + ":00"
}
