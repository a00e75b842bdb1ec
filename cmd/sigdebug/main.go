package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"

	"github.com/jamesprial/go-instagram-api-wrapper/internal"
)

// sigdebug prints the identity and signed body the client would send, for
// comparing against captured app traffic.
func main() {
	username := flag.String("username", os.Getenv("INSTAGRAM_USERNAME"), "account name")
	password := flag.String("password", os.Getenv("INSTAGRAM_PASSWORD"), "account password")
	body := flag.String("body", "", "JSON payload to sign; defaults to a login payload")
	flag.Parse()

	if *username == "" || *password == "" {
		log.Fatal("-username and -password (or INSTAGRAM_USERNAME and INSTAGRAM_PASSWORD) are required")
	}

	deviceID := internal.GenerateDeviceID(*username, *password)
	fmt.Printf("device_id:   %s\n", deviceID)

	payload := *body
	if payload == "" {
		session := internal.NewSession(*username, *password, nil, nil)
		fmt.Printf("_uuid:       %s\n", session.InstallUUID())

		signed, err := internal.SignedBody(session, internal.Params{
			"username":            *username,
			"device_id":           deviceID,
			"password":            strings.Repeat("*", len(*password)),
			"login_attempt_count": "0",
		})
		if err != nil {
			log.Fatalf("Failed to sign payload: %v", err)
		}
		printSigned(signed)
		return
	}

	if !json.Valid([]byte(payload)) {
		log.Fatal("-body is not valid JSON")
	}
	printSigned(internal.GenerateSignature(payload))
}

func printSigned(signed string) {
	fmt.Printf("\nsigned body:\n%s\n", signed)

	form, err := url.ParseQuery(signed)
	if err != nil {
		log.Fatalf("Signed body does not parse as a form: %v", err)
	}
	sig, payload, _ := strings.Cut(form.Get("signed_body"), ".")
	fmt.Printf("\nkey version: %s\n", form.Get("ig_sig_key_version"))
	fmt.Printf("signature:   %s\n", sig)
	fmt.Printf("payload:     %s\n", payload)
}
