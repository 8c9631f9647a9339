package geodb

import (
	"context"
	"strconv"

	"github.com/qioalice/ipstack"
	"github.com/rs/zerolog/log"
)

// IPStackLocator is an optional remote fallback that asks the ipstack API.
type IPStackLocator struct {
	cli *ipstack.Client
}

func NewIPStackLocator(apiKey string) (*IPStackLocator, error) {
	cli, err := ipstack.New(
		ipstack.ParamToken(apiKey),
		ipstack.ParamUseHTTPS(true),
	)
	if err != nil {
		log.Info().Msg("failed to create ipstack client. Have you remembered to set the API key? Use RELAYGEO_LOCATORS_IPSTACK_APIKEY or locators.ipstack.apikey in the config file")
		return nil, err
	}

	return &IPStackLocator{cli: cli}, nil
}

func (isl *IPStackLocator) Lookup(_ context.Context, address string) (*Location, error) {
	res, err := isl.cli.IP(address)
	if err != nil {
		return nil, err
	}

	if res.Latitide == 0 && res.Longitude == 0 {
		return nil, nil
	}

	return &Location{
		Latitude:  strconv.FormatFloat(float64(res.Latitide), 'f', -1, 32),
		Longitude: strconv.FormatFloat(float64(res.Longitude), 'f', -1, 32),
	}, nil
}
