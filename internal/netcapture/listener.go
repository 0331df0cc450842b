// Copyright 2026 the Mystapp contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package netcapture

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// Attach starts recording the page behind ctx, which must be a chromedp tab context.
// Callers must call Stop on every exit path so the listener does not outlive the test.
func Attach(ctx context.Context, opts Options) (*Recorder, error) {
	r := NewRecorder(opts)

	c := chromedp.FromContext(ctx)
	if c == nil || c.Target == nil {
		return nil, fmt.Errorf("attach network capture: no page in context")
	}
	executor := cdp.WithExecutor(ctx, c.Target)

	listenCtx, cancel := context.WithCancel(ctx)
	r.detach = cancel

	chromedp.ListenTarget(listenCtx, func(ev any) {
		switch e := ev.(type) {
		case *network.EventRequestWillBeSent:
			r.OnRequest(Request{
				ID:      string(e.RequestID),
				Type:    e.Type.String(),
				Method:  e.Request.Method,
				URL:     e.Request.URL,
				Headers: flatten(e.Request.Headers),
				Body:    postData(e.Request),
			})
		case *network.EventResponseReceived:
			r.OnResponse(Response{
				ID:       string(e.RequestID),
				Status:   int(e.Response.Status),
				MIMEType: e.Response.MimeType,
				Headers:  flatten(e.Response.Headers),
			})
		case *network.EventLoadingFinished:
			id := e.RequestID
			// GetResponseBody blocks on the browser, which must not happen on the event loop.
			r.Track(func() {
				r.OnFinished(string(id), func() ([]byte, error) {
					return network.GetResponseBody(id).Do(executor)
				})
			})
		case *network.EventLoadingFailed:
			r.OnFailed(string(e.RequestID), e.ErrorText)
		}
	})

	if err := chromedp.Run(ctx, network.Enable()); err != nil {
		cancel()
		return nil, fmt.Errorf("enable network events: %w", err)
	}
	return r, nil
}

// postData joins the request body parts. Parts the browser could not decode are skipped.
func postData(req *network.Request) []byte {
	if !req.HasPostData {
		return nil
	}
	data := []byte{}
	for _, entry := range req.PostDataEntries {
		b, err := base64.StdEncoding.DecodeString(entry.Bytes)
		if err != nil {
			continue
		}
		data = append(data, b...)
	}
	return data
}

func flatten(h network.Headers) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = fmt.Sprint(v)
	}
	return out
}
