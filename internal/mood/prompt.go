package mood

import (
	"net/url"
	"strings"
)

const maxContentRunes = 2000

const answerShape = `Reply with JSON only: {"mood": "<mood name>", "emoji": "<one emoji>", "song": {"title": "<song title>", "artist": "<artist name>"}}`

const contentSystemPrompt = `You read web page content and name the atmosphere it leaves the reader with.
Pick a specific, evocative mood name rather than a plain emotion, for example "Rainy Afternoon Calm" or "Neon Night Drive".
Choose one emoji for that mood and one real song that fits its energy, tempo and emotional depth.
Range widely across genres, decades and cultures and lean towards less obvious picks.
` + answerShape

const moodSystemPrompt = `You are a music curator. Given a mood, recommend one real song that fits it.
Range widely across genres, decades and cultures.
` + answerShape

// moodPrompts are interchangeable phrasings; one is picked per request so
// repeated next-song calls do not keep landing on the same answer.
var moodPrompts = []string{
	`Suggest one real song that matches the mood "{mood}". Skip the most obvious pick.`,
	`Someone is in a "{mood}" mood. Recommend a single existing track they would enjoy, from any era or genre.`,
	`Pick a song for a "{mood}" moment. Lesser-known artists are welcome as long as the song really exists.`,
	`Name one actual song whose atmosphere is "{mood}". Vary the decade and style from what you would usually choose.`,
	`Recommend one real track that captures the feeling "{mood}". Surprise the listener while staying on mood.`,
}

const avoidPrefix = "\n\nIMPORTANT: Do NOT recommend these songs (already played): "

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// contentContext truncates the page text first, then prefixes the page
// location when the URL is absolute.
func contentContext(text, pageURL string) string {
	text = truncateRunes(text, maxContentRunes)

	u, err := url.Parse(strings.TrimSpace(pageURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return text
	}

	path := u.Path
	if path == "" {
		path = "/"
	}
	return "Website: " + u.Hostname() + "\nURL Path: " + path + "\n\n" + text
}

func buildMoodPrompt(variant int, label string, avoid []string) string {
	p := strings.ReplaceAll(moodPrompts[variant], "{mood}", label)
	if len(avoid) > 0 {
		p += avoidPrefix + strings.Join(avoid, ", ")
	}
	return p
}
