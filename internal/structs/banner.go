package structs

const (
	BannerSectionHome    = "home"
	BannerSectionProfile = "profile"
)

type Banner struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Image   string `json:"image"`
	Link    string `json:"link"`
	Section string `json:"section"`
	Active  bool   `json:"active"`
}

// InSection treats a missing section as home.
func (b Banner) InSection(section string) bool {
	s := b.Section
	if s == "" {
		s = BannerSectionHome
	}
	return s == section
}

type BannerPayload struct {
	Title   string `json:"title"`
	Image   string `json:"image"`
	Link    string `json:"link"`
	Section string `json:"section"`
	Active  bool   `json:"active"`
}
