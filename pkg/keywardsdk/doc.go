/*
Package keywardsdk is a client for the keyward license service.

# Clients and sessions

SDKClient talks to the signed routes with an API key. Every request carries
the x-api-key, x-req-timestamp, x-req-nonce and x-req-signature headers; the
nonce is a random UUID so a request is never replayed by accident.

	client := keywardsdk.NewSDKClient("https://licenses.example.com", keyID, secret)

	res, err := client.Validate(ctx, keywardsdk.ValidateRequest{
		Key:  key,
		HWID: hwid,
	})
	if err != nil {
		return err // transport, signing or server failure
	}
	if !res.Valid {
		fmt.Println(res.Outcome, res.Message)
	}

A rejected key is a normal outcome, not an error. ValidateResponse.Outcome
names exactly one of the Outcome constants.

OwnerSession adds an owner's bearer token to signed requests:

	owner := client.NewOwnerSession(token)
	lic, err := owner.Redeem(ctx, key)

AdminSession calls the administrative API with the admin secret, adding a
TOTP code when a second factor is configured:

	admin := client.NewAdminSession(adminSecret, totpSecret)
	lic, err := admin.CreateLicense(ctx, keywardsdk.CreateLicenseRequest{GameType: "rust"})

# Errors

Non-2xx responses are returned as *APIError. Compare codes with errors.Is:

	_, err := admin.GetLicense(ctx, id)
	if errors.Is(err, &keywardsdk.APIError{Code: keywardsdk.ErrorCodeNotFound}) {
		...
	}

# Thread Safety

SDKClient and both session types hold no mutable state and are safe for
concurrent use.
*/
package keywardsdk
