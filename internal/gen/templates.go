package gen

import (
	"math/rand"
	"strings"
)

var arabicFallbackTexts = []string{
	"في {name}، نؤمن بأن التميز ليس خياراً بل أسلوب حياة. نقدم لكم أفضل الخدمات والمنتجات في مجالنا.",
	"اكتشفوا الفرق مع {name}. جودة عالية وخدمة احترافية تليق بكم وبتطلعاتكم.",
	"لأنكم تستاهلون الأفضل — {name} هنا عشان نحقق لكم تجربة مميزة ما تنسونها.",
	"{name} يقدم لكم حلول مبتكرة تناسب احتياجاتكم. تواصلوا معنا اليوم واكتشفوا المزيد.",
	"ثقة عملائنا هي أكبر إنجازاتنا. شكراً لكل من اختار {name} — نعدكم بالأفضل دائماً.",
	"هل تبحثون عن الجودة والاحترافية؟ {name} وجهتكم الأولى. زورونا وشوفوا بأنفسكم.",
	"مع {name}، كل يوم هو فرصة جديدة للتميز. انضموا لعائلتنا المتنامية واستمتعوا بالفرق.",
	"نفخر في {name} بتقديم خدمات تتجاوز توقعاتكم. جربونا وشاركونا رأيكم.",
}

var englishFallbackTexts = []string{
	"At {name}, we believe excellence isn't optional — it's a way of life. We bring you the best services in our field.",
	"Discover the difference with {name}. Premium quality and professional service that matches your ambitions.",
	"Because you deserve the best — {name} is here to deliver an unforgettable experience.",
	"{name} offers innovative solutions tailored to your needs. Contact us today and learn more.",
	"Our clients' trust is our greatest achievement. Thank you for choosing {name} — we promise the best, always.",
	"Looking for quality and professionalism? {name} is your go-to destination. Visit us and see for yourself.",
	"With {name}, every day is a new opportunity to excel. Join our growing family and experience the difference.",
	"At {name}, we pride ourselves on exceeding expectations. Try us and share your experience.",
}

var arabicHashtagPool = []string{
	"#السعودية", "#الرياض", "#جدة", "#رؤية_2030", "#اعمال",
	"#ريادة_اعمال", "#نجاح", "#تميز", "#خدمات", "#جودة",
}

var englishHashtagPool = []string{
	"#SaudiArabia", "#Riyadh", "#Jeddah", "#Vision2030", "#Business",
	"#Entrepreneurship", "#Success", "#Quality", "#Services", "#Growth",
}

// TemplatePosts produces posts from the canned copy pool. Used when the
// generation provider is unavailable so a paying user still gets content.
func TemplatePosts(req PostRequest) []Post {
	name := req.BusinessName
	if name == "" {
		name = "نشاطك التجاري"
	}
	platforms := req.Platforms
	if len(platforms) == 0 {
		platforms = []string{"instagram"}
	}

	posts := make([]Post, 0, req.NumPosts)
	for i := 0; i < req.NumPosts; i++ {
		post := Post{Day: i + 1, Platform: platforms[i%len(platforms)]}
		if req.Language == LanguageArabic || req.Language == LanguageBoth {
			post.TextAR = strings.ReplaceAll(arabicFallbackTexts[i%len(arabicFallbackTexts)], "{name}", name)
			post.HashtagsAR = sampleTags(arabicHashtagPool, 5)
		}
		if req.Language == LanguageEnglish || req.Language == LanguageBoth {
			post.TextEN = strings.ReplaceAll(englishFallbackTexts[i%len(englishFallbackTexts)], "{name}", name)
			post.HashtagsEN = sampleTags(englishHashtagPool, 5)
		}
		posts = append(posts, post)
	}
	return posts
}

// DemoPosts returns the three hardcoded showcase posts served to anonymous
// visitors trying the product.
func DemoPosts(businessName, language string, platforms []string) []Post {
	name := businessName
	if name == "" {
		name = "نشاطك التجاري"
	}
	p1, p2, p3 := "instagram", "instagram", "instagram"
	if len(platforms) > 0 {
		p1, p2, p3 = platforms[0], platforms[0], platforms[0]
	}
	if len(platforms) > 1 {
		p2 = platforms[1]
	}
	if len(platforms) > 2 {
		p3 = platforms[2]
	}

	posts := []Post{
		{
			Day: 1, Platform: p1,
			TextAR:     "في " + name + "، نؤمن بأن التميز مو مجرد كلام — هو أسلوب حياة. كل يوم نسعى نقدم لكم الأفضل لأنكم تستاهلون. جربونا وشوفوا الفرق بأنفسكم.",
			TextEN:     "At " + name + ", we believe excellence isn't just a word — it's how we operate. Every day we push to bring you the best, because you deserve nothing less. Come see the difference for yourself.",
			HashtagsAR: []string{"#السعودية", "#تميز", "#جودة", "#الرياض", "#رؤية_2030"},
			HashtagsEN: []string{"#SaudiArabia", "#Excellence", "#Quality", "#Riyadh", "#Vision2030"},
		},
		{
			Day: 2, Platform: p2,
			TextAR:     "عملاؤنا الكرام هم سر نجاحنا. شكراً لثقتكم في " + name + " — نعدكم إننا دايماً نطور ونتحسن عشان نكون عند حسن ظنكم.",
			TextEN:     "Our valued customers are the secret to our success. Thank you for trusting " + name + " — we promise to continuously improve and exceed your expectations.",
			HashtagsAR: []string{"#عملاء", "#ثقة", "#نجاح", "#الرياض", "#خدمات"},
			HashtagsEN: []string{"#CustomerFirst", "#Trust", "#Success", "#Riyadh", "#Services"},
		},
		{
			Day: 3, Platform: p3,
			TextAR:     "تبي جودة واحترافية؟ " + name + " وجهتك الأولى. تعال واكتشف ليش عملاؤنا يرجعون لنا كل مرة.",
			TextEN:     "Looking for quality and professionalism? " + name + " is your go-to. Come discover why our clients always come back.",
			HashtagsAR: []string{"#جودة", "#احترافية", "#السعودية", "#تسوق", "#اعمال"},
			HashtagsEN: []string{"#Quality", "#Professional", "#SaudiArabia", "#Business", "#Growth"},
		},
	}

	for i := range posts {
		switch language {
		case LanguageArabic:
			posts[i].TextEN = ""
			posts[i].HashtagsEN = nil
		case LanguageEnglish:
			posts[i].TextAR = ""
			posts[i].HashtagsAR = nil
		}
	}
	return posts
}

func sampleTags(pool []string, n int) []string {
	if n > len(pool) {
		n = len(pool)
	}
	idx := rand.Perm(len(pool))[:n]
	tags := make([]string, n)
	for i, j := range idx {
		tags[i] = pool[j]
	}
	return tags
}
