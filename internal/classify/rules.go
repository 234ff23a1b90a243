package classify

import "regexp"

// Trigger is one entry of a category's trigger list: either a lowercase
// substring or a regex for pattern-based triggers.
type Trigger struct {
	Keyword string
	Pattern *regexp.Regexp
}

func kw(s string) Trigger { return Trigger{Keyword: s} }

func re(expr string) Trigger { return Trigger{Pattern: regexp.MustCompile(expr)} }

// String reports what matched, for traceability in tags and tests.
func (t Trigger) String() string {
	if t.Pattern != nil {
		return t.Pattern.String()
	}
	return t.Keyword
}

type CategoryRule struct {
	Name     string
	Triggers []Trigger
}

// BillingPolicy selects which billing-dominance rule is in effect. The two
// rules come from different analysis passes of the same data set and
// disagree; they are kept as explicit options rather than reconciled.
type BillingPolicy string

const (
	// PolicyDistinctTerms: billing-dominant when the billing count is
	// strictly greater than DistinctThreshold.
	PolicyDistinctTerms BillingPolicy = "distinct_terms"
	// PolicyComparative: billing-dominant when the billing count exceeds the
	// product count by more than ComparativeMargin.
	PolicyComparative BillingPolicy = "comparative"
)

// CountRule selects how term lists are counted against a text.
type CountRule string

const (
	CountDistinctTerms CountRule = "distinct_terms" // number of terms present at least once
	CountOccurrences   CountRule = "occurrences"    // total substring occurrences
)

// Rules is the immutable configuration a Classifier is built from. Tables
// are data, not code: swap them wholesale to change behavior.
type Rules struct {
	BillingTerms []string
	ProductTerms []string
	Categories   []CategoryRule

	Policy            BillingPolicy
	Counting          CountRule
	DistinctThreshold int
	ComparativeMargin int
}

// CategoryOrder maps category name to its declaration index, used for
// deterministic tie-breaking in aggregation.
func (r Rules) CategoryOrder() map[string]int {
	order := make(map[string]int, len(r.Categories))
	for i, c := range r.Categories {
		order[c.Name] = i
	}
	return order
}

// DefaultRules returns the built-in rule tables for meditation-app reviews.
func DefaultRules() Rules {
	return Rules{
		BillingTerms: []string{
			"cancel", "cancelled", "cancellation", "refund", "charge", "charged", "billing",
			"subscription", "unsubscribe", "renew", "renewal", "auto-renew", "autorenewal",
			"free trial", "trial", "money back", "payment", "paypal", "credit card",
			"scam", "fraud", "fraudulent", "steal", "stolen", "theft", "rip off", "ripoff",
			"predatory", "deceptive", "misleading", "hidden fees", "unauthorized",
			"bank", "dispute", "chargeback", "$", "£", "€", "dollar", "pound", "price",
			"expensive", "overpriced", "cost", "fee",
		},
		ProductTerms: []string{
			"app", "content", "meditation", "sleep", "feature", "bug",
			"crash", "audio", "interface", "design", "quality", "voice",
		},
		Categories: []CategoryRule{
			{Name: "login_authentication", Triggers: []Trigger{
				kw("login"), kw("log in"), kw("sign in"), kw("signin"), kw("password"),
				kw("authenticate"), kw("account access"), kw("can't access"), kw("cannot access"),
				kw("locked out"), kw("verification"), kw("verify"), kw("credentials"),
				kw("reset password"), re(`can'?t (log|sign)`),
			}},
			{Name: "app_crashes_bugs", Triggers: []Trigger{
				kw("crash"), kw("bug"), kw("buggy"), kw("glitch"), kw("freeze"), kw("frozen"),
				kw("error"), kw("broken"), kw("not working"), kw("doesnt work"),
				kw("doesn't work"), kw("stopped working"), kw("malfunction"),
			}},
			{Name: "ui_ux_design", Triggers: []Trigger{
				kw("confusing"), kw("hard to use"), kw("difficult to navigate"), kw("navigation"),
				kw("interface"), kw("layout"), kw("cluttered"), kw("unintuitive"),
				kw("user experience"), kw("menu"), kw("hard to find"), kw("can't find"),
				kw("complicated"), kw("where is"),
			}},
			{Name: "content_quality", Triggers: []Trigger{
				kw("meditation"), kw("sleep"), kw("story"), kw("stories"), kw("music"),
				kw("sounds"), kw("narrator"), kw("narration"), kw("variety"), kw("selection"),
				kw("limited"), kw("repetitive"), kw("boring"), kw("outdated"), kw("stale"),
			}},
			{Name: "feature_missing", Triggers: []Trigger{
				kw("missing"), kw("wish"), kw("would like"), kw("should have"),
				kw("doesn't have"), kw("no option"), kw("can't do"), kw("cannot do"),
				kw("lacking"), kw("lacks"),
			}},
			{Name: "offline_download", Triggers: []Trigger{
				kw("offline"), kw("download"), kw("without internet"), kw("no wifi"),
				kw("airplane mode"), kw("storage"),
			}},
			{Name: "sync_devices", Triggers: []Trigger{
				kw("sync"), kw("device"), kw("tablet"), kw("ipad"), kw("apple watch"),
				kw("cross-device"), kw("multiple devices"), re(`progress (lost|reset|gone)`),
			}},
			{Name: "performance_speed", Triggers: []Trigger{
				kw("slow"), kw("loading"), kw("load time"), kw("buffer"), kw("lag"),
				kw("laggy"), kw("takes forever"),
			}},
			{Name: "notifications_reminders", Triggers: []Trigger{
				kw("notification"), kw("reminder"), kw("alert"), kw("push"), kw("spam"),
			}},
			{Name: "customer_support", Triggers: []Trigger{
				kw("support"), kw("customer service"), kw("no response"), kw("unhelpful"),
				kw("ignored"), kw("contact"),
			}},
			{Name: "timer_tracking", Triggers: []Trigger{
				kw("timer"), kw("tracking"), kw("streak"), kw("stats"), kw("statistics"),
				kw("history"), kw("progress"),
			}},
			{Name: "personalization", Triggers: []Trigger{
				kw("personalize"), kw("personalization"), kw("customize"), kw("customization"),
				kw("recommend"), kw("recommendation"), kw("tailored"),
			}},
			{Name: "audio_playback", Triggers: []Trigger{
				kw("playback"), kw("pause"), kw("volume"), kw("background"), kw("cuts off"),
				kw("skip"), re(`audio (cut|stop|skip)`), re(`doesn'?t play`),
			}},
		},
		Policy:            PolicyDistinctTerms,
		Counting:          CountDistinctTerms,
		DistinctThreshold: 3,
		ComparativeMargin: 2,
	}
}
