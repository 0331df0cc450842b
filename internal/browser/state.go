// Copyright 2026 the Mystapp contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package browser

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"go.mystapp.dev/internal/sessionstore"
)

// StorageState captures the cookies of the browser context and the local storage of the
// current origin.
func (p *Page) StorageState(ctx context.Context) (sessionstore.State, error) {
	var cookies []*network.Cookie
	if err := p.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		cookies, err = network.GetCookies().Do(ctx)
		return err
	})); err != nil {
		return sessionstore.State{}, fmt.Errorf("read cookies: %w", err)
	}

	var origin sessionstore.Origin
	if err := p.eval(ctx, &origin, "localStorage"); err != nil {
		return sessionstore.State{}, err
	}

	state := sessionstore.State{Cookies: make([]sessionstore.Cookie, 0, len(cookies))}
	for _, c := range cookies {
		state.Cookies = append(state.Cookies, sessionstore.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  c.Expires,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
			SameSite: c.SameSite.String(),
		})
	}
	if origin.Origin != "" && origin.Origin != "null" {
		state.Origins = []sessionstore.Origin{origin}
	}
	return state, nil
}

// ApplyState restores saved cookies, then visits each saved origin to restore its local storage.
func (p *Page) ApplyState(ctx context.Context, state sessionstore.State) error {
	params := make([]*network.CookieParam, 0, len(state.Cookies))
	for _, c := range state.Cookies {
		param := &network.CookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
			SameSite: network.CookieSameSite(c.SameSite),
		}
		if c.Expires > 0 {
			sec, frac := math.Modf(c.Expires)
			expires := cdp.TimeSinceEpoch(time.Unix(int64(sec), int64(frac*float64(time.Second))))
			param.Expires = &expires
		}
		params = append(params, param)
	}
	if len(params) > 0 {
		if err := p.run(ctx, network.SetCookies(params)); err != nil {
			return fmt.Errorf("restore cookies: %w", err)
		}
	}

	for _, o := range state.Origins {
		if len(o.LocalStorage) == 0 {
			continue
		}
		if err := p.Navigate(ctx, o.Origin); err != nil {
			return fmt.Errorf("open %s to restore local storage: %w", o.Origin, err)
		}
		if err := p.eval(ctx, nil, "setLocalStorage", o.LocalStorage); err != nil {
			return err
		}
	}
	return nil
}
