// Standalone IMAP connectivity check. Reads the target server from the
// environment so no credentials live in the source tree:
//
//	CLASSEUR_IMAP_ADDR=imap.example.com:993 \
//	CLASSEUR_IMAP_USER=me@example.com \
//	CLASSEUR_IMAP_PASSWORD=secret \
//	CLASSEUR_IMAP_SENT_MAILBOX=Sent \
//	go run ./cmd/test_imap
package main

import (
	"crypto/tls"
	"fmt"
	"log"
	"net"
	"os"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
)

func main() {
	addr := os.Getenv("CLASSEUR_IMAP_ADDR")
	username := os.Getenv("CLASSEUR_IMAP_USER")
	password := os.Getenv("CLASSEUR_IMAP_PASSWORD")
	sentMailbox := os.Getenv("CLASSEUR_IMAP_SENT_MAILBOX")
	if sentMailbox == "" {
		sentMailbox = "Sent"
	}

	if addr == "" || username == "" || password == "" {
		log.Fatal("CLASSEUR_IMAP_ADDR, CLASSEUR_IMAP_USER and CLASSEUR_IMAP_PASSWORD must be set")
	}

	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		log.Fatalf("Invalid address %q: %v", addr, err)
	}

	log.Printf("Connecting to %s...", addr)
	c, err := client.DialTLS(addr, &tls.Config{ServerName: host})
	if err != nil {
		log.Fatalf("Connection failed: %v", err)
	}
	defer c.Logout()
	log.Println("Connected.")

	log.Printf("Logging in as %s...", username)
	if err := c.Login(username, password); err != nil {
		log.Fatalf("Login failed: %v", err)
	}
	log.Println("Logged in.")

	for _, mailbox := range []string{"INBOX", sentMailbox} {
		if err := dumpRecent(c, mailbox); err != nil {
			log.Printf("Mailbox %s: %v", mailbox, err)
		}
	}

	log.Println("Done.")
}

// dumpRecent prints the envelopes of the five most recent messages
func dumpRecent(c *client.Client, mailbox string) error {
	mbox, err := c.Select(mailbox, true)
	if err != nil {
		return fmt.Errorf("select failed: %w", err)
	}
	log.Printf("Mailbox %s has %d message(s)", mailbox, mbox.Messages)

	if mbox.Messages == 0 {
		return nil
	}

	from := uint32(1)
	if mbox.Messages > 5 {
		from = mbox.Messages - 4
	}
	seqSet := new(imap.SeqSet)
	seqSet.AddRange(from, mbox.Messages)

	messages := make(chan *imap.Message, 10)
	done := make(chan error, 1)
	go func() {
		done <- c.Fetch(seqSet, []imap.FetchItem{imap.FetchEnvelope}, messages)
	}()

	fmt.Println("--------------------------------------------------")
	for msg := range messages {
		if msg == nil || msg.Envelope == nil {
			continue
		}
		fmt.Printf("Subject: %s\n", msg.Envelope.Subject)
		if len(msg.Envelope.From) > 0 {
			sender := msg.Envelope.From[0]
			fmt.Printf("From: %s <%s@%s>\n", sender.PersonalName, sender.MailboxName, sender.HostName)
		}
		fmt.Printf("Date: %s\n", msg.Envelope.Date)
		fmt.Println("--------------------------------------------------")
	}

	return <-done
}
