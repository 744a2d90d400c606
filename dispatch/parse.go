package dispatch

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"io"
)

var errEmptyBody = errors.New("empty response body")

// JSON returns a ParseFunc decoding the body as JSON into T.
func JSON[T any]() ParseFunc[T] {
	return func(resp *Response) (T, error) {
		var v T
		if resp.Body == nil {
			return v, errEmptyBody
		}
		if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
			if errors.Is(err, io.EOF) {
				return v, errEmptyBody
			}
			return v, err
		}
		return v, nil
	}
}

// XML returns a ParseFunc decoding the body as XML into T.
func XML[T any]() ParseFunc[T] {
	return func(resp *Response) (T, error) {
		var v T
		if resp.Body == nil {
			return v, errEmptyBody
		}
		if err := xml.NewDecoder(resp.Body).Decode(&v); err != nil {
			if errors.Is(err, io.EOF) {
				return v, errEmptyBody
			}
			return v, err
		}
		return v, nil
	}
}

// Bytes returns a ParseFunc reading the whole body.
func Bytes() ParseFunc[[]byte] {
	return func(resp *Response) ([]byte, error) {
		if resp.Body == nil {
			return nil, nil
		}
		return io.ReadAll(resp.Body)
	}
}
