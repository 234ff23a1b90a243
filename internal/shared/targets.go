package shared

// AppTarget holds the per-source identifiers of one app under study.
type AppTarget struct {
	Company        string
	AppStoreID     string
	PlayPackage    string
	TrustpilotSlug string // business domain as it appears in the review URL
}

// Targets is the fixed set of apps a scrape run covers.
var Targets = []AppTarget{
	{
		Company:        "Calm",
		AppStoreID:     "571800810",
		PlayPackage:    "com.calm.android",
		TrustpilotSlug: "calm.com",
	},
	{
		Company:        "Headspace",
		AppStoreID:     "493145008",
		PlayPackage:    "com.getsomeheadspace.android",
		TrustpilotSlug: "headspace.com",
	},
}
