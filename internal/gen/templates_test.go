package gen

import "testing"

func TestTemplatePostsRotatePlatformsAndLanguage(t *testing.T) {
	posts := TemplatePosts(PostRequest{
		BusinessName: "مقهى الديرة",
		BusinessType: "restaurant",
		Platforms:    []string{"instagram", "x"},
		Language:     LanguageBoth,
		NumPosts:     4,
	})

	if len(posts) != 4 {
		t.Fatalf("expected 4 posts got %d", len(posts))
	}
	for i, post := range posts {
		if post.Day != i+1 {
			t.Fatalf("post %d has day %d", i, post.Day)
		}
		if post.TextAR == "" || post.TextEN == "" {
			t.Fatalf("post %d missing bilingual text: %+v", i, post)
		}
		if len(post.HashtagsAR) != 5 || len(post.HashtagsEN) != 5 {
			t.Fatalf("post %d has wrong hashtag counts", i)
		}
	}
	if posts[0].Platform != "instagram" || posts[1].Platform != "x" || posts[2].Platform != "instagram" {
		t.Fatalf("platforms not rotated: %s %s %s", posts[0].Platform, posts[1].Platform, posts[2].Platform)
	}
}

func TestTemplatePostsArabicOnly(t *testing.T) {
	posts := TemplatePosts(PostRequest{
		BusinessName: "Nokhba",
		Platforms:    []string{"linkedin"},
		Language:     LanguageArabic,
		NumPosts:     2,
	})

	for i, post := range posts {
		if post.TextAR == "" {
			t.Fatalf("post %d missing arabic text", i)
		}
		if post.TextEN != "" || post.HashtagsEN != nil {
			t.Fatalf("post %d leaked english fields: %+v", i, post)
		}
	}
}

func TestDemoPostsSpreadAcrossPlatforms(t *testing.T) {
	posts := DemoPosts("صالون لمسة", LanguageBoth, []string{"instagram", "snapchat", "tiktok"})

	if len(posts) != 3 {
		t.Fatalf("expected 3 demo posts got %d", len(posts))
	}
	want := []string{"instagram", "snapchat", "tiktok"}
	for i, post := range posts {
		if post.Platform != want[i] {
			t.Fatalf("post %d on %s want %s", i, post.Platform, want[i])
		}
	}
}

func TestDemoPostsEnglishOnlyStripsArabic(t *testing.T) {
	posts := DemoPosts("", LanguageEnglish, nil)

	for i, post := range posts {
		if post.Platform != "instagram" {
			t.Fatalf("post %d should default to instagram got %s", i, post.Platform)
		}
		if post.TextAR != "" || post.HashtagsAR != nil {
			t.Fatalf("post %d leaked arabic fields: %+v", i, post)
		}
		if post.TextEN == "" {
			t.Fatalf("post %d missing english text", i)
		}
	}
}
