// Package interpret turns submitted dream text into a title, a reading and a
// small preview image. Work runs on a background worker pool.
package interpret

import (
	"fmt"
	"strings"
	"unicode"
)

const titleWords = 5

type symbol struct {
	words   []string
	meaning string
}

// symbols is matched in order; the first three hits make up the reading.
var symbols = []symbol{
	{[]string{"fly", "flying", "flew", "wings"}, "Flying points to a wish for freedom or a new perspective on something that has felt heavy."},
	{[]string{"fall", "falling", "fell"}, "Falling often shows up when a part of life feels out of control."},
	{[]string{"water", "sea", "ocean", "river", "rain", "swim"}, "Water mirrors your emotional state; calm water is calm feeling, rough water is unrest."},
	{[]string{"teeth", "tooth"}, "Losing teeth is linked to worries about appearance or about how others see you."},
	{[]string{"chase", "chased", "chasing", "run", "running"}, "Being chased suggests something you are avoiding in waking life."},
	{[]string{"house", "home", "room", "door"}, "Houses stand for the self; unfamiliar rooms hint at sides of yourself you have not explored."},
	{[]string{"exam", "test", "school", "late"}, "Exams and lateness reflect pressure to perform and fear of being judged."},
	{[]string{"dog", "cat", "animal", "wolf", "bird"}, "Animals carry instinct; how you treat them shows how you treat your own impulses."},
	{[]string{"death", "dead", "die", "dying"}, "Death in dreams usually marks an ending that makes room for a new beginning."},
	{[]string{"baby", "child", "children"}, "A child signals a fresh start or a project that needs care."},
	{[]string{"snow", "ice", "cold"}, "Cold scenes point to emotions that are on hold."},
}

const fallbackReading = "This dream does not lean on a common symbol. Note how it made you feel; the feeling is usually the key."

// Interpret derives a title and a reading from the dream text.
func Interpret(input string) (title, reading string) {
	words := strings.FieldsFunc(strings.ToLower(input), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})

	seen := make(map[string]bool, len(words))
	for _, w := range words {
		seen[w] = true
	}

	var hits []string
	for _, s := range symbols {
		for _, w := range s.words {
			if seen[w] {
				hits = append(hits, s.meaning)
				break
			}
		}
		if len(hits) == 3 {
			break
		}
	}

	if len(hits) == 0 {
		reading = fallbackReading
	} else {
		reading = strings.Join(hits, " ")
	}
	return makeTitle(input), reading
}

func makeTitle(input string) string {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return "Untitled dream"
	}
	more := len(fields) > titleWords
	if more {
		fields = fields[:titleWords]
	}
	t := strings.TrimRight(strings.Join(fields, " "), ".,;:!?")
	r := []rune(t)
	r[0] = unicode.ToUpper(r[0])
	if more {
		return fmt.Sprintf("%s...", string(r))
	}
	return string(r)
}
