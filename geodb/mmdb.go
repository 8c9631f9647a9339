package geodb

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/jinzhu/copier"
	"github.com/oschwald/geoip2-golang"
	"github.com/rs/zerolog/log"

	"github.com/relaymaps/relaygeo/utils"
)

// MMDBLocator is an optional fallback over a MaxMind-format city database,
// for addresses the range dataset does not cover.
type MMDBLocator struct {
	db *geoip2.Reader
}

func NewMMDBLocator(path string) (*MMDBLocator, error) {
	if !utils.FileExists(path) {
		return nil, fmt.Errorf("file not found %s", path)
	}

	db, err := geoip2.Open(path)
	if err != nil {
		return nil, err
	}

	log.Info().Str("path", path).Msg("mmdb fallback enabled")

	return &MMDBLocator{db: db}, nil
}

type mmdbCoordinates struct {
	Latitude  float64
	Longitude float64
}

func (ml *MMDBLocator) Lookup(_ context.Context, address string) (*Location, error) {
	ip := net.ParseIP(address)
	if ip == nil || ip.To4() == nil {
		return nil, &utils.InvalidAddressError{}
	}

	city, err := ml.db.City(ip)
	if err != nil {
		return nil, err
	}

	coords := mmdbCoordinates{}
	if err := copier.Copy(&coords, &city.Location); err != nil {
		return nil, err
	}

	// mmdb reports unknown locations as the zero coordinate pair
	if coords.Latitude == 0 && coords.Longitude == 0 {
		return nil, nil
	}

	return &Location{
		Latitude:  strconv.FormatFloat(coords.Latitude, 'f', -1, 64),
		Longitude: strconv.FormatFloat(coords.Longitude, 'f', -1, 64),
	}, nil
}

func (ml *MMDBLocator) Close() {
	if ml.db != nil {
		ml.db.Close()
	}
}
