package scheduling

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/slotscout/slotscout/internal/domain/entities"
	"github.com/slotscout/slotscout/internal/domain/providers"
	apperrors "github.com/slotscout/slotscout/pkg/errors"
)

const (
	defaultBaseURL = "https://publicapi.txdpsscheduler.com/api"
	defaultOrigin  = "https://public.txdpsscheduler.com"
	defaultTimeout = 30 * time.Second

	// wireTimeLayout is the scheduler's timestamp format, e.g.
	// "2020-12-22T15:50:00". No zone; times are local to the site.
	wireTimeLayout = "2006-01-02T15:04:05"

	// dobLayout is the date-of-birth format the scheduler expects.
	dobLayout = "01/02/2006"

	// anyPreferredDay means the applicant can attend any day of the week.
	anyPreferredDay = 0

	maxFragmentLen = 200
)

// DPSAdapter implements SchedulerProvider against the Texas DPS public
// scheduler API. The API serves JSON bodies under a text/plain content type,
// so responses are always parsed as JSON regardless of the label. Every
// request carries a fixed Origin header. The adapter never retries.
type DPSAdapter struct {
	httpClient *http.Client
	baseURL    string
	origin     string
}

// NewDPSAdapter creates a new adapter against the production API.
func NewDPSAdapter() *DPSAdapter {
	return NewDPSAdapterWithOptions(defaultBaseURL, defaultOrigin, nil)
}

// NewDPSAdapterWithOptions allows overriding the base URL, Origin header and
// HTTP client (used for tests).
func NewDPSAdapterWithOptions(baseURL, origin string, httpClient *http.Client) *DPSAdapter {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	if strings.TrimSpace(origin) == "" {
		origin = defaultOrigin
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &DPSAdapter{
		httpClient: httpClient,
		baseURL:    baseURL,
		origin:     origin,
	}
}

// ListCities returns the scheduler's site-wide city list.
func (a *DPSAdapter) ListCities(ctx context.Context) ([]entities.City, error) {
	var resp siteDataResponse
	if err := a.do(ctx, http.MethodGet, "/SiteData", nil, &resp); err != nil {
		return nil, err
	}

	cities := make([]entities.City, 0, len(resp.Cities))
	for _, name := range resp.Cities {
		cities = append(cities, entities.City{Name: name})
	}
	return cities, nil
}

// FindNearestLocations returns up to five locations nearest the given city.
// Latitude and longitude are extracted from the map-link URL embedded in the
// response, and the zip code and city name from the free-text address.
func (a *DPSAdapter) FindNearestLocations(ctx context.Context, city string, serviceTypeID int) ([]entities.Location, error) {
	payload := availableLocationRequest{
		TypeID:       serviceTypeID,
		ZipCode:      "",
		CityName:     city,
		PreferredDay: anyPreferredDay,
	}

	var resp []availableLocationEntry
	if err := a.do(ctx, http.MethodPost, "/AvailableLocation", payload, &resp); err != nil {
		return nil, err
	}

	locations := make([]entities.Location, 0, len(resp))
	for _, entry := range resp {
		lat, lng, err := pullLatLong(entry.MapURL)
		if err != nil {
			return nil, err
		}
		zip, town, err := pullZipTown(entry.Address)
		if err != nil {
			return nil, err
		}
		next, err := parseWireDate(entry.NextAvailableDate)
		if err != nil {
			return nil, err
		}
		locations = append(locations, entities.Location{
			ID:            entry.ID,
			Name:          entry.Name,
			Address:       entry.Address,
			CityName:      town,
			ZipCode:       zip,
			Latitude:      lat,
			Longitude:     lng,
			NextAvailable: next,
		})
	}
	return locations, nil
}

// NextAppointment returns the earliest open slot at a location.
func (a *DPSAdapter) NextAppointment(ctx context.Context, locationID, serviceTypeID int) (*entities.SlotDetail, error) {
	payload := availableLocationDatesRequest{
		LocationID:   locationID,
		TypeID:       serviceTypeID,
		SameDay:      false,
		StartDate:    nil,
		PreferredDay: anyPreferredDay,
	}

	var resp availableLocationDatesResponse
	if err := a.do(ctx, http.MethodPost, "/AvailableLocationDates", payload, &resp); err != nil {
		return nil, err
	}

	if len(resp.LocationAvailabilityDates) == 0 || len(resp.LocationAvailabilityDates[0].AvailableTimeSlots) == 0 {
		return nil, apperrors.NewNoSlotError(fmt.Sprintf("no open slot at location %d", locationID))
	}

	first := resp.LocationAvailabilityDates[0].AvailableTimeSlots[0]
	start, err := parseWireDate(first.StartDateTime)
	if err != nil {
		return nil, err
	}
	end, err := parseWireDate(first.EndDateTime)
	if err != nil {
		return nil, err
	}

	return &entities.SlotDetail{
		LocationID:      locationID,
		SlotID:          first.SlotID,
		StartTime:       start,
		EndTime:         end,
		DurationMinutes: first.Duration,
	}, nil
}

// HoldSlot places a temporary reservation on a slot using the applicant's
// minimal identity fields.
func (a *DPSAdapter) HoldSlot(ctx context.Context, slotID int, applicant entities.Applicant) error {
	payload := holdSlotRequest{
		SlotID:          slotID,
		identityPayload: identityFrom(applicant),
	}

	// The hold response body carries nothing the transaction needs, but it
	// must still be valid JSON.
	var resp json.RawMessage
	return a.do(ctx, http.MethodPost, "/HoldSlot", payload, &resp)
}

// ExistingBookings confirms the held slot and returns all of the applicant's
// bookings.
func (a *DPSAdapter) ExistingBookings(ctx context.Context, applicant entities.Applicant) ([]entities.ExistingBooking, error) {
	var resp []existingBookingEntry
	if err := a.do(ctx, http.MethodPost, "/Booking", identityFrom(applicant), &resp); err != nil {
		return nil, err
	}

	bookings := make([]entities.ExistingBooking, 0, len(resp))
	for _, entry := range resp {
		when, err := parseWireDate(entry.BookingDateTime)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, entities.ExistingBooking{
			BookingID:          entry.BookingID,
			ConfirmationNumber: entry.ConfirmationNumber,
			ServiceTypeID:      entry.ServiceTypeID,
			SiteName:           entry.SiteName,
			BookingDateTime:    when,
		})
	}
	return bookings, nil
}

// SubmitBooking commits the held slot as a new booking.
func (a *DPSAdapter) SubmitBooking(ctx context.Context, req *entities.BookingRequest) (*entities.BookingResult, error) {
	return a.book(ctx, "/NewBooking", req)
}

// RescheduleBooking commits the held slot against the applicant's colliding
// booking for the same service type.
func (a *DPSAdapter) RescheduleBooking(ctx context.Context, req *entities.BookingRequest) (*entities.BookingResult, error) {
	return a.book(ctx, "/RescheduleBooking", req)
}

// CancelBooking cancels an existing booking.
func (a *DPSAdapter) CancelBooking(ctx context.Context, bookingID int) error {
	payload := cancelBookingRequest{BookingID: bookingID}
	var resp json.RawMessage
	return a.do(ctx, http.MethodPost, "/CancelBooking", payload, &resp)
}

func (a *DPSAdapter) book(ctx context.Context, path string, req *entities.BookingRequest) (*entities.BookingResult, error) {
	payload := bookingRequest{
		identityPayload: identityFrom(req.Applicant),
		CardNumber:      req.CardNumber,
		Email:           req.Contact.Email,
		CellPhone:       formatPhone(req.Contact.Phone),
		HomePhone:       "",
		ServiceTypeID:   req.ServiceTypeID,
		BookingDateTime: req.StartTime.Format(wireTimeLayout),
		BookingDuration: req.DurationMinutes,
		SpanishLanguage: "N",
		SiteID:          req.LocationID,
		SendSms:         req.Contact.Phone != "",
		AdaRequired:     false,
	}

	var resp bookingResponse
	if err := a.do(ctx, http.MethodPost, path, payload, &resp); err != nil {
		return nil, err
	}

	result := &entities.BookingResult{
		ConfirmationNumber: resp.Booking.ConfirmationNumber,
	}
	if resp.ErrorMessage != nil {
		result.ErrorMessage = *resp.ErrorMessage
	}
	return result, nil
}

// do issues one request and decodes the JSON body into out. The API labels
// responses text/plain, so the body is read raw and unmarshalled directly.
func (a *DPSAdapter) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return apperrors.NewInternalError("failed to encode scheduler payload", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return apperrors.NewInternalError("failed to build scheduler request", err)
	}
	req.Header.Set("Origin", a.origin)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return apperrors.NewRemoteUnavailableError(fmt.Sprintf("scheduler request %s failed", path), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apperrors.NewRemoteUnavailableError(
			fmt.Sprintf("scheduler request %s returned status %d", path, resp.StatusCode), nil)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.NewRemoteUnavailableError(fmt.Sprintf("failed to read scheduler response for %s", path), err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return apperrors.NewUnexpectedResponseError(
			fmt.Sprintf("scheduler response for %s is not the expected shape: %q", path, fragment(data)), err)
	}
	return nil
}

// parseWireDate parses the handful of timestamp shapes the scheduler emits.
func parseWireDate(value string) (time.Time, error) {
	for _, layout := range []string{wireTimeLayout, "2006-01-02", "01/02/2006"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperrors.NewUnexpectedResponseError(
		fmt.Sprintf("unrecognized scheduler timestamp: %q", value), nil)
}

// formatPhone renders a 10-digit number as "(111) 111-1111". Anything that
// is not 10 digits is passed through unchanged.
func formatPhone(num string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, num)
	if len(digits) != 10 {
		return num
	}
	return fmt.Sprintf("(%s) %s-%s", digits[:3], digits[3:6], digits[6:])
}

func identityFrom(applicant entities.Applicant) identityPayload {
	return identityPayload{
		FirstName:   applicant.FirstName,
		LastName:    applicant.LastName,
		DateOfBirth: applicant.DateOfBirth.Format(dobLayout),
		Last4SSN:    applicant.Last4SSN,
	}
}

func fragment(data []byte) string {
	if len(data) > maxFragmentLen {
		return string(data[:maxFragmentLen]) + "..."
	}
	return string(data)
}

// Wire types.

type siteDataResponse struct {
	Cities []string `json:"Cities"`
}

type availableLocationRequest struct {
	TypeID       int    `json:"TypeId"`
	ZipCode      string `json:"ZipCode"`
	CityName     string `json:"CityName"`
	PreferredDay int    `json:"PreferredDay"`
}

type availableLocationEntry struct {
	ID                int    `json:"Id"`
	Name              string `json:"Name"`
	Address           string `json:"Address"`
	MapURL            string `json:"MapUrl"`
	NextAvailableDate string `json:"NextAvailableDate"`
}

type availableLocationDatesRequest struct {
	LocationID   int     `json:"LocationId"`
	TypeID       int     `json:"TypeId"`
	SameDay      bool    `json:"SameDay"`
	StartDate    *string `json:"StartDate"`
	PreferredDay int     `json:"PreferredDay"`
}

type availableLocationDatesResponse struct {
	LocationAvailabilityDates []struct {
		AvailableTimeSlots []struct {
			StartDateTime string `json:"StartDateTime"`
			EndDateTime   string `json:"EndDateTime"`
			SlotID        int    `json:"SlotId"`
			Duration      int    `json:"Duration"`
		} `json:"AvailableTimeSlots"`
	} `json:"LocationAvailabilityDates"`
}

type identityPayload struct {
	FirstName   string `json:"FirstName"`
	LastName    string `json:"LastName"`
	DateOfBirth string `json:"DateOfBirth"`
	Last4SSN    string `json:"Last4Ssn"`
}

type holdSlotRequest struct {
	SlotID int `json:"SlotId"`
	identityPayload
}

type existingBookingEntry struct {
	BookingID          int    `json:"BookingId"`
	ConfirmationNumber string `json:"ConfirmationNumber"`
	ServiceTypeID      int    `json:"ServiceTypeId"`
	SiteName           string `json:"SiteName"`
	BookingDateTime    string `json:"BookingDateTime"`
}

type bookingRequest struct {
	identityPayload
	CardNumber      string `json:"CardNumber"`
	Email           string `json:"Email"`
	CellPhone       string `json:"CellPhone"`
	HomePhone       string `json:"HomePhone"`
	ServiceTypeID   int    `json:"ServiceTypeId"`
	BookingDateTime string `json:"BookingDateTime"`
	BookingDuration int    `json:"BookingDuration"`
	SpanishLanguage string `json:"SpanishLanguage"`
	SiteID          int    `json:"SiteId"`
	SendSms         bool   `json:"SendSms"`
	AdaRequired     bool   `json:"AdaRequired"`
}

type bookingResponse struct {
	ErrorMessage *string `json:"ErrorMessage"`
	Booking      struct {
		ConfirmationNumber string `json:"ConfirmationNumber"`
	} `json:"Booking"`
}

type cancelBookingRequest struct {
	BookingID int `json:"BookingId"`
}

var _ providers.SchedulerProvider = (*DPSAdapter)(nil)
