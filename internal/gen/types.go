package gen

// PostRequest describes a batch of social posts to generate.
type PostRequest struct {
	BusinessName   string
	BusinessType   string
	TargetAudience string
	Platforms      []string
	Tone           string
	Language       string
	NumPosts       int
}

// Post is a single generated social media post. Arabic and English fields are
// populated according to the requested language.
type Post struct {
	Day        int      `json:"day"`
	Platform   string   `json:"platform"`
	TextAR     string   `json:"text_ar,omitempty"`
	TextEN     string   `json:"text_en,omitempty"`
	HashtagsAR []string `json:"hashtags_ar,omitempty"`
	HashtagsEN []string `json:"hashtags_en,omitempty"`
}

// ScriptRequest describes a short vertical video reel to script.
type ScriptRequest struct {
	BusinessName   string
	BusinessType   string
	TargetAudience string
	Platform       string
	Tone           string
	Language       string
}

// Slide is one caption card of a reel script. VideoURL is filled in by the
// stock clip lookup when available.
type Slide struct {
	Slide           int    `json:"slide"`
	TextAR          string `json:"text_ar"`
	TextEN          string `json:"text_en"`
	VisualKeyword   string `json:"visual_keyword"`
	DurationSeconds int    `json:"duration_seconds"`
	VideoURL        string `json:"video_url,omitempty"`
}

// ImageRequest describes a single social media image to generate.
type ImageRequest struct {
	Prompt       string
	Platform     string
	BusinessName string
	Style        string
	Language     string
}

// Image is a generated image asset.
type Image struct {
	Data     []byte
	MIMEType string
	AltText  string
}

// Languages accepted by the generators.
const (
	LanguageArabic  = "ar"
	LanguageEnglish = "en"
	LanguageBoth    = "both"
)
