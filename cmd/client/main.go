package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

const serverPort = 8080

// main walks the REST API once: create a contact, look it up, search for
// it, validate an email address, compose an SMS, render a template, and
// finally delete the contact again.
//
// Usage example on the command line:
// > go run main.go
func main() {
	created := sendRequest(http.MethodPost, endpoint("/contacts"), []byte(`{
		"first": "Marcus",
		"last": "Antonius",
		"email": ["marcus.antonius@example.com"],
		"phone": ["+39 999 777 555"]
	}`))
	var createBody struct {
		Id      string `json:"id"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(created, &createBody); err != nil {
		fmt.Println("could not unmarshal JSON", err)
		panic(err)
	}
	fmt.Println("created contact:", createBody.Id)

	fmt.Println(string(sendRequest(http.MethodGet, endpoint("/contacts/"+createBody.Id), nil)))
	fmt.Println(string(sendRequest(http.MethodGet, endpoint("/contacts/search?query=anton"), nil)))
	fmt.Println(string(sendRequest(http.MethodGet, endpoint("/users/names"), nil)))
	fmt.Println(string(sendRequest(http.MethodGet,
		endpoint("/emails/validate?address=marcus.antonius@example.com"), nil)))
	fmt.Println(string(sendRequest(http.MethodPost, endpoint("/messages/sms"), []byte(`{
		"phone": "+39 999 777 555",
		"body": "Ave! Dinner tonight?"
	}`))))
	fmt.Println(string(sendRequest(http.MethodGet,
		endpoint("/messages/voice?phone="+url.QueryEscape("+39 999 777 555")), nil)))
	fmt.Println(string(sendRequest(http.MethodPost, endpoint("/messages/templates/render"), []byte(`{
		"template": "greeting",
		"context": {
			"contact_name": "Marcus",
			"user_name": "Dirk",
			"custom_message": "It has been a while."
		}
	}`))))
	fmt.Println(string(sendRequest(http.MethodDelete, endpoint("/contacts/"+createBody.Id), nil)))
}

func endpoint(path string) string {
	return fmt.Sprintf("http://localhost:%d%s", serverPort, path)
}

func sendRequest(method string, requestURL string, body []byte) []byte {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequest(method, requestURL, reader)
	if err != nil {
		fmt.Println("could not create request", err)
		panic(err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Println("error making http request", err)
		panic(err)
	}
	defer res.Body.Close()
	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		fmt.Println("could not read response body", err)
		panic(err)
	}
	return resBody
}
