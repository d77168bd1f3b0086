package recorder

import (
	"math/rand/v2"
	"regexp"
	"strconv"
	"time"
)

var (
	reDate    = regexp.MustCompile(`%date:(.*?)%`)
	reRand    = regexp.MustCompile(`%rand:(\d+)%`)
	reSession = regexp.MustCompile(`%session%`)
)

// parseName expands the output name template:
//
//	%date:<Go time layout>% - session start time
//	%rand:<N>%              - N random letters
//	%session%               - session id
func parseName(name string, now time.Time, session string) string {
	out := reDate.ReplaceAllStringFunc(name, func(m string) string {
		return now.Format(reDate.FindStringSubmatch(m)[1])
	})
	out = reRand.ReplaceAllStringFunc(out, func(m string) string {
		return random(reRand.FindStringSubmatch(m)[1])
	})
	return reSession.ReplaceAllString(out, session)
}

const letterBytes = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

func random(num string) string {
	n, err := strconv.Atoi(num)
	if err != nil {
		return ""
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = letterBytes[rand.IntN(len(letterBytes))]
	}
	return string(b)
}
