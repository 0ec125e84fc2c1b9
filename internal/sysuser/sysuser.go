package sysuser

import (
	"bufio"
	"bytes"
	"context"
	"os/exec"
	"os/user"
	"strings"
)

// Exists reports whether the account is known to Directory Services.
// SelfControl runs as a real user even though the daemon runs as root,
// so a typo here has to be caught before anything is installed.
func Exists(ctx context.Context, username string) (bool, error) {
	out, err := exec.CommandContext(ctx, "dscl", ".", "list", "/users").Output()
	if err != nil {
		return false, err
	}
	return containsUser(out, username), nil
}

// UID resolves the numeric user id for the account, in the decimal
// string form SelfControl's binary expects as its first argument.
func UID(username string) (string, error) {
	u, err := user.Lookup(username)
	if err != nil {
		return "", err
	}
	return u.Uid, nil
}

func containsUser(listing []byte, username string) bool {
	sc := bufio.NewScanner(bytes.NewReader(listing))
	for sc.Scan() {
		if strings.TrimSpace(sc.Text()) == username {
			return true
		}
	}
	return false
}
