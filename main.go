package main

import (
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/jasonlvhit/gocron"
	"github.com/peterbourgon/ff"
	log "github.com/sirupsen/logrus"

	"github.com/chadlanoway/Bottle-of-Rhumb/api"
	"github.com/chadlanoway/Bottle-of-Rhumb/land"
	"github.com/chadlanoway/Bottle-of-Rhumb/xmpp"
)

func main() {
	fs := flag.NewFlagSet("bottle-of-rhumb", flag.ExitOnError)
	var (
		addr           = fs.String("addr", ":8888", "listen address")
		maskFile       = fs.String("mask", "land/mask.bin", "land mask file")
		refreshSeconds = fs.Uint64("mask-refresh", 60, "seconds between mask file checks")
		timeoutSeconds = fs.Int("timeout", 60, "seconds before a route request is abandoned")
		debug          = fs.Bool("debug", false, "debug logging")
		xmppHost       = fs.String("xmpp-host", "", "")
		xmppJid        = fs.String("xmpp-jid", "", "")
		xmppPassword   = fs.String("xmpp-password", "", "")
		xmppTo         = fs.String("xmpp-to", "", "")
	)
	ff.Parse(fs, os.Args[1:], ff.WithEnvVarNoPrefix())

	if *debug {
		log.SetLevel(log.DebugLevel)
	}

	x := &xmpp.Xmpp{Config: xmpp.Config{Host: *xmppHost, Jid: *xmppJid, Password: *xmppPassword, To: *xmppTo}}

	log.Info("Load land mask")
	store := land.NewStore(*maskFile)
	if err := store.Load(); err != nil {
		// the server still boots; requests fail with mask-not-ready until
		// a refresh finds the file
		log.Warnf("No land mask yet: %v", err)
	}

	s := gocron.NewScheduler()
	s.Every(*refreshSeconds).Seconds().Do(store.Refresh)
	go s.Start()

	log.Info("Start server")

	router := api.InitServer(store, x, time.Duration(*timeoutSeconds)*time.Second)
	log.Fatal(http.ListenAndServe(*addr, handlers.CombinedLoggingHandler(os.Stdout, router)))
}
