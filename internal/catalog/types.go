// Package catalog talks to the external ticketing catalog API.  The wire
// format is the upstream's snake_case JSON; translation into the internal
// camelCase model happens in the sync package.
package catalog

// ShowsResponse is the top-level document returned by the shows endpoint.
type ShowsResponse struct {
	Shows []Show `json:"shows"`
}

// Show is one catalog item together with its nested events and categories.
// Optional string fields arrive empty rather than null-tagged; the sync
// layer normalizes them.
type Show struct {
	ID             int64          `json:"id"`
	Name           string         `json:"name"`
	Image          string         `json:"image"`
	Desc           string         `json:"desc"`
	PartnerID      int64          `json:"partner_id"`
	AgeLimit       int64          `json:"age_limit"`
	ShortInfo      string         `json:"short_info"`
	FullInfo       string         `json:"full_info"`
	PublDate       string         `json:"publ_date"`
	PremiereDate   string         `json:"premiere_date"`
	Duration       string         `json:"duration"`
	MinPrice       string         `json:"min_price"`
	MaxPrice       string         `json:"max_price"`
	IsPushkin      bool           `json:"is_pushkin"`
	TypeNum        string         `json:"type_num"`
	DetailedURL    string         `json:"detailed_url"`
	Events         []Event        `json:"events"`
	ShowCategories []ShowCategory `json:"show_categories"`
}

// Event is a scheduled occurrence of a show, optionally nesting its venue.
type Event struct {
	ID               int64     `json:"id"`
	TimeType         int64     `json:"time_type"`
	Date             string    `json:"date"`
	FixDate          string    `json:"fix_date"`
	EndDate          string    `json:"end_date"`
	Timestamp        int64     `json:"timestamp"`
	Name             string    `json:"name"`
	ShowID           int64     `json:"show_id"`
	LocationID       int64     `json:"location_id"`
	LocationName     string    `json:"location_name"`
	ServiceName      string    `json:"service_name"`
	Count            int64     `json:"count"`
	MinPrice         string    `json:"min_price"`
	MaxPrice         string    `json:"max_price"`
	Image            string    `json:"image"`
	AgeLimit         int64     `json:"age_limit"`
	Desc             string    `json:"desc"`
	CityID           int64     `json:"city_id"`
	Address          string    `json:"address"`
	IsSeason         bool      `json:"is_season"`
	IsCovidFree      bool      `json:"is_covid_free"`
	Building         *Building `json:"building"`
	PipelineEventID  int64     `json:"pipeline_event_id"`
	IsAccessOnlyLink bool      `json:"is_access_only_link"`
}

// Building is a physical venue shared across events.
type Building struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	CityID  int64  `json:"city_id"`
	Address string `json:"address"`
	Lat     string `json:"lat"`
	Lon     string `json:"lon"`
}

// ShowCategory is a tag attached to a show.
type ShowCategory struct {
	Name string `json:"name"`
}
