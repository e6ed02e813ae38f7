package boxoffice

// Distributor is a closed vocabulary of theatrical distributors as labeled on
// release summary pages.
type Distributor string

// Known distributors.
const (
	DistributorA24                  Distributor = "a24"
	DistributorAmazon               Distributor = "amazon_studios"
	DistributorAnnapurna            Distributor = "annapurna"
	DistributorBleeckerStreet       Distributor = "bleecker_street"
	DistributorDisney               Distributor = "disney"
	DistributorFocus                Distributor = "focus_features"
	DistributorFoxSearchlight       Distributor = "fox_searchlight"
	DistributorIFC                  Distributor = "ifc_films"
	DistributorLionsgate            Distributor = "lionsgate"
	DistributorMagnolia             Distributor = "magnolia"
	DistributorMGM                  Distributor = "mgm"
	DistributorNeon                 Distributor = "neon"
	DistributorNetflix              Distributor = "netflix"
	DistributorParamount            Distributor = "paramount"
	DistributorRoadside             Distributor = "roadside_attractions"
	DistributorSony                 Distributor = "sony"
	DistributorSonyClassics         Distributor = "sony_classics"
	DistributorSTX                  Distributor = "stx"
	DistributorTwentiethFox         Distributor = "twentieth_century_fox"
	DistributorUnitedArtists        Distributor = "united_artists"
	DistributorUniversal            Distributor = "universal"
	DistributorWarnerBros           Distributor = "warner_bros"
	DistributorWeinstein            Distributor = "weinstein"
	DistributorEntertainmentStudios Distributor = "entertainment_studios"
)

var distributorLabels = map[Distributor]string{
	DistributorA24:                  "A24",
	DistributorAmazon:               "Amazon Studios",
	DistributorAnnapurna:            "Annapurna Pictures",
	DistributorBleeckerStreet:       "Bleecker Street Media",
	DistributorDisney:               "Walt Disney Studios Motion Pictures",
	DistributorFocus:                "Focus Features",
	DistributorFoxSearchlight:       "Fox Searchlight Pictures",
	DistributorIFC:                  "IFC Films",
	DistributorLionsgate:            "Lionsgate",
	DistributorMagnolia:             "Magnolia Pictures",
	DistributorMGM:                  "Metro-Goldwyn-Mayer (MGM)",
	DistributorNeon:                 "Neon",
	DistributorNetflix:              "Netflix",
	DistributorParamount:            "Paramount Pictures",
	DistributorRoadside:             "Roadside Attractions",
	DistributorSony:                 "Sony Pictures Entertainment (SPE)",
	DistributorSonyClassics:         "Sony Pictures Classics",
	DistributorSTX:                  "STX Entertainment",
	DistributorTwentiethFox:         "Twentieth Century Fox",
	DistributorUnitedArtists:        "United Artists Releasing",
	DistributorUniversal:            "Universal Pictures",
	DistributorWarnerBros:           "Warner Bros.",
	DistributorWeinstein:            "The Weinstein Company",
	DistributorEntertainmentStudios: "Entertainment Studios Motion Pictures",
}

var distributorsByLabel = invert(distributorLabels)

// Distributors returns every known distributor.
func Distributors() []Distributor {
	out := make([]Distributor, 0, len(distributorLabels))
	for d := range distributorLabels {
		out = append(out, d)
	}
	return out
}

// Label returns the display label, or "" for an unknown value.
func (d Distributor) Label() string {
	return distributorLabels[d]
}

// ParseDistributor maps a display label back to its Distributor.
func ParseDistributor(label string) (Distributor, bool) {
	d, ok := distributorsByLabel[normalizeLabel(label)]
	return d, ok
}
