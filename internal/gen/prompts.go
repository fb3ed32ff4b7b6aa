package gen

import (
	"fmt"
	"strings"
)

type tonePair struct {
	ar string
	en string
}

var toneLabels = map[string]tonePair{
	"professional":  {"احترافي ومصقول", "professional and polished"},
	"friendly":      {"ودّي وقريب", "warm and approachable"},
	"formal":        {"رسمي", "formal and corporate"},
	"inspirational": {"ملهم وتحفيزي", "inspirational and motivational"},
	"playful":       {"مرح وخفيف", "fun and lighthearted"},
}

var businessTypeLabels = map[string]string{
	"restaurant":   "مطعم / Restaurant",
	"online_store": "متجر إلكتروني / Online Store",
	"real_estate":  "عقارات / Real Estate",
	"beauty":       "تجميل / Beauty & Skincare",
	"fashion":      "أزياء / Fashion",
	"technology":   "تقنية / Technology",
	"education":    "تعليم / Education",
	"health":       "صحة / Health",
	"tourism":      "سياحة / Tourism",
	"general":      "عام / General Business",
}

var stockKeywordLabels = map[string]string{
	"restaurant":   "restaurant/food",
	"online_store": "e-commerce/retail",
	"real_estate":  "real estate/property",
	"beauty":       "beauty/skincare",
	"fashion":      "fashion/clothing",
	"technology":   "technology/software",
	"education":    "education/training",
	"health":       "health/wellness",
	"tourism":      "tourism/travel",
	"general":      "business/services",
}

func toneLabel(tone string) tonePair {
	if t, ok := toneLabels[tone]; ok {
		return t
	}
	return tonePair{"ودّي", "friendly"}
}

func businessTypeLabel(businessType string) string {
	if l, ok := businessTypeLabels[businessType]; ok {
		return l
	}
	return businessType
}

func stockKeywordLabel(businessType string) string {
	if l, ok := stockKeywordLabels[businessType]; ok {
		return l
	}
	return "business"
}

func postsPrompt(req PostRequest) string {
	tone := toneLabel(req.Tone)

	langInstruction := map[string]string{
		LanguageBoth:    `For EACH post provide BOTH "text_ar" (Gulf Saudi dialect, NOT formal MSA) and "text_en" (professional English). Also provide "hashtags_ar" and "hashtags_en".`,
		LanguageArabic:  `Write all posts in Arabic ONLY using Gulf/Saudi dialect. Provide "text_ar" and "hashtags_ar" only. Do NOT include English fields.`,
		LanguageEnglish: `Write all posts in English ONLY. Provide "text_en" and "hashtags_en" only. Do NOT include Arabic fields.`,
	}[req.Language]
	if langInstruction == "" {
		langInstruction = "Provide both Arabic and English."
	}

	audience := req.TargetAudience
	if audience == "" {
		audience = "General Saudi audience"
	}

	return fmt.Sprintf(`You are an expert Saudi social media content strategist. Generate exactly %d social media posts.

BUSINESS: %s
TYPE: %s
AUDIENCE: %s
PLATFORMS: %s
TONE: %s / %s

%s

RULES:
- Each post MUST be unique, creative, and engaging
- 3-5 relevant hashtags per post — use Saudi-specific tags (#السعودية #الرياض #جدة #رؤية_2030 etc.)
- Mix content types: promotional, educational, behind-the-scenes, testimonial-style, engagement questions, seasonal content
- Platform-appropriate: short for X/Twitter (< 280 chars), descriptive for Instagram, professional for LinkedIn, casual for Snapchat/TikTok
- Reference Saudi culture: Ramadan, Eid, National Day, Founding Day, Riyadh Season, coffee culture
- NO emojis — clean text only
- Distribute posts evenly across platforms
- Arabic MUST be Gulf/Saudi dialect — natural and conversational, NOT formal MSA

Return ONLY valid JSON:
{"posts":[{"day":1,"platform":"instagram","text_ar":"...","text_en":"...","hashtags_ar":["#..."],"hashtags_en":["#..."]}]}

Generate exactly %d posts, days 1 through %d.`,
		req.NumPosts, req.BusinessName, businessTypeLabel(req.BusinessType), audience,
		strings.Join(req.Platforms, ", "), tone.ar, tone.en, langInstruction,
		req.NumPosts, req.NumPosts)
}

func scriptPrompt(req ScriptRequest) string {
	tone := toneLabel(req.Tone)

	langNote := map[string]string{
		LanguageBoth:    "provide BOTH text_ar (Gulf/Saudi Arabic dialect) and text_en (English)",
		LanguageArabic:  "provide text_ar (Gulf/Saudi Arabic dialect) only, set text_en to empty string",
		LanguageEnglish: "provide text_en (English) only, set text_ar to empty string",
	}[req.Language]
	if langNote == "" {
		langNote = "provide both Arabic and English"
	}

	audience := req.TargetAudience
	if audience == "" {
		audience = "Saudi/Gulf consumers"
	}

	return fmt.Sprintf(`Create a short video reel script for social media (%s) for this business:

Business: %s
Type: %s
Target Audience: %s
Tone: %s / %s

Generate 6-8 caption slides for a 15-30 second vertical video reel.
Each slide should be displayed for 2-4 seconds.

Requirements:
- Short, punchy text (max 8 words per slide in Arabic, 10 in English)
- The first slide is a hook (grabs attention instantly)
- Last slide has a clear call-to-action
- Reference Saudi culture where appropriate
- visual_keyword: 1-2 English words for stock video search (e.g., "coffee shop", "fashion model", "city skyline", "team work")
- %s
- duration_seconds: 2, 3, or 4

Return ONLY valid JSON array:
[
  {
    "slide": 1,
    "text_ar": "...",
    "text_en": "...",
    "visual_keyword": "...",
    "duration_seconds": 3
  }
]`,
		req.Platform, req.BusinessName, stockKeywordLabel(req.BusinessType), audience,
		tone.ar, tone.en, langNote)
}

type imageSpec struct {
	aspect string
	style  string
}

var platformImageSpecs = map[string]imageSpec{
	"instagram":       {"square (1:1, 1080x1080px)", "vibrant, lifestyle-focused"},
	"instagram_story": {"portrait (9:16, 1080x1920px)", "bold, full-bleed visual"},
	"x":               {"landscape (16:9, 1200x675px)", "clean, minimal, high contrast"},
	"linkedin":        {"landscape (1.91:1, 1200x627px)", "professional, corporate"},
	"snapchat":        {"portrait (9:16, 1080x1920px)", "playful, colorful, casual"},
	"tiktok":          {"portrait (9:16, 1080x1920px)", "trendy, dynamic, eye-catching"},
	"facebook":        {"landscape (16:9, 1200x630px)", "engaging, clear message"},
}

func imagePrompt(req ImageRequest) string {
	spec, ok := platformImageSpecs[req.Platform]
	if !ok {
		spec = platformImageSpecs["instagram"]
	}

	style := req.Style
	if style == "" {
		style = spec.style
	}

	businessContext := ""
	if req.BusinessName != "" {
		businessContext = " for " + req.BusinessName
	}

	return fmt.Sprintf("Create a professional social media image%s. "+
		"Description: %s. "+
		"Style: %s. "+
		"Format: %s. "+
		"The image should be high-quality, visually striking, and suitable for Saudi Arabian market. "+
		"Modern, clean design. No text overlays unless the prompt specifically requests text. "+
		"Colors should feel warm and premium. Cultural sensitivity: appropriate for Saudi/Gulf audience.",
		businessContext, req.Prompt, style, spec.aspect)
}
