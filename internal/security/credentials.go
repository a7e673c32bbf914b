package security

import (
	"crypto/rand"
	"math/big"
)

// Word lists for child usernames. Kids cannot pick their own login, so the
// generated ones should be short, pronounceable, and fun to say out loud.
var usernameAdjectives = []string{
	"sunny", "brave", "bright", "swift", "clever", "jolly", "mighty", "super",
	"lucky", "bouncy", "cheerful", "daring", "gentle", "jazzy", "lively",
	"merry", "perky", "quick", "snappy", "turbo", "zippy", "bold", "cosmic",
	"epic", "groovy", "shiny", "sparkly", "thrifty", "golden", "silver",
	"copper", "speedy", "happy", "plucky", "nifty", "dandy",
}

var usernameNouns = []string{
	"dragon", "tiger", "eagle", "dolphin", "panda", "lion", "wolf", "fox",
	"hawk", "phoenix", "unicorn", "rocket", "wizard", "knight", "pirate",
	"robot", "hero", "champion", "explorer", "ranger", "captain", "comet",
	"thunder", "tornado", "otter", "badger", "falcon", "penguin", "squirrel",
	"magpie", "beaver", "raccoon", "hamster", "walrus", "narwhal", "puffin",
}

// GenerateChildUsername returns a random "adjective-noun" login. Callers
// retry on collision; with over a thousand combinations a handful of retries
// is plenty for a single family.
func GenerateChildUsername() (string, error) {
	adjIdx, err := randIndex(len(usernameAdjectives))
	if err != nil {
		return "", err
	}
	nounIdx, err := randIndex(len(usernameNouns))
	if err != nil {
		return "", err
	}
	return usernameAdjectives[adjIdx] + "-" + usernameNouns[nounIdx], nil
}

// childPasswordAlphabet leaves out 0/O, 1/l/I and similar lookalikes since
// kids type these in by hand.
const childPasswordAlphabet = "abcdefghjkmnpqrstuvwxyzABCDEFGHJKMNPQRSTUVWXYZ23456789"

const childPasswordLength = 6

// GenerateChildPassword returns a short random password for a child account.
func GenerateChildPassword() (string, error) {
	password := make([]byte, childPasswordLength)
	for i := range password {
		idx, err := randIndex(len(childPasswordAlphabet))
		if err != nil {
			return "", err
		}
		password[i] = childPasswordAlphabet[idx]
	}
	return string(password), nil
}

func randIndex(n int) (int, error) {
	num, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(num.Int64()), nil
}
