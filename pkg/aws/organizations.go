package aws

import (
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/organizations"
	"github.com/aws/aws-sdk-go/service/organizations/organizationsiface"
	log "github.com/sirupsen/logrus"
)

type Account struct {
	Id     string
	Name   string
	Status string
}

// ListAccounts returns every member account of the organization. On failure
// the error is logged and the accounts gathered so far are returned.
func ListAccounts(ctx context.Context, orgSession organizationsiface.OrganizationsAPI) []Account {
	accounts := []Account{}

	err := orgSession.ListAccountsPagesWithContext(ctx, &organizations.ListAccountsInput{},
		func(page *organizations.ListAccountsOutput, lastPage bool) bool {
			for _, account := range page.Accounts {
				accounts = append(accounts, Account{
					Id:     aws.StringValue(account.Id),
					Name:   aws.StringValue(account.Name),
					Status: aws.StringValue(account.Status),
				})
			}
			return true
		})
	if err != nil {
		log.Errorf("Can't list AWS accounts: %s", err.Error())
	}

	return accounts
}
