package utils_test

import (
	"testing"

	"github.com/temirov/summarize/internal/utils"
)

func TestDetectMimeTypeFromBytes(t *testing.T) {
	testCases := []struct {
		name     string
		data     []byte
		expected string
	}{
		{name: "plain text", data: []byte("plain text"), expected: "text/plain; charset=utf-8"},
		{name: "html", data: []byte("<!DOCTYPE html><html></html>"), expected: "text/html; charset=utf-8"},
		{name: "json object", data: []byte(`{"cells": []}`), expected: "text/plain; charset=utf-8"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if actual := utils.DetectMimeTypeFromBytes(testCase.data); actual != testCase.expected {
				t.Fatalf("expected %q, got %q", testCase.expected, actual)
			}
		})
	}
}
