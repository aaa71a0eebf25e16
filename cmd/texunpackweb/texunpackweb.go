package main

import (
	"flag"
	"net/http"
	"os"

	"badc0de.net/pkg/flagutil/v1"
	"github.com/golang/glog"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"badc0de.net/pkg/go-texunpack/extract"
	"badc0de.net/pkg/go-texunpack/formats"
	"badc0de.net/pkg/go-texunpack/texture"
	"badc0de.net/pkg/go-texunpack/tpsheet"
	"badc0de.net/pkg/go-texunpack/unpack"
	"badc0de.net/pkg/go-texunpack/web"
)

var (
	listenAddress = flag.String("listen_address", ":8080", "http listen address for texunpackweb")
	workers       = flag.Int("workers", 0, "number of sprites extracted in parallel per upload; defaults to the number of CPUs")
	maxSessions   = flag.Int("max_sessions", web.DefaultMaxSessions, "how many unpacked atlases to keep in memory")
	maxPixels     = flag.Int64("max_atlas_pixels", texture.DefaultMaxPixels, "largest accepted atlas image, in pixels; negative for no limit")
	flipY         = flag.Bool("tpsheet_flip_y", false, "treat text sheet y coordinates as measured from the bottom of the atlas")
)

func main() {
	flagutil.Parse()

	h, err := web.NewHandler(web.Options{
		Unpack: unpack.Options{
			Parse:   formats.Options{TextSheet: tpsheet.Options{FlipY: *flipY}},
			Extract: extract.Options{Workers: *workers},
			Texture: texture.Options{MaxPixels: *maxPixels},
		},
		MaxSessions: *maxSessions,
	})
	if err != nil {
		glog.Exitf("%v", err)
	}

	r := mux.NewRouter()
	h.RegisterRoutes(r)
	h.RegisterDebugRoutes(r)

	glog.Infof("texunpackweb listening on %s", *listenAddress)
	glog.Fatal(http.ListenAndServe(*listenAddress, handlers.CombinedLoggingHandler(os.Stdout, handlers.CompressHandler(r))))
}
