package models

import "moviecatalog/proj/internal/storage/postgres"

type Models struct {
	Account *AccountModel
	Movie   *MovieModel
	Review  *ReviewModel
}

func New(db *postgres.Storage) *Models {
	return &Models{
		Account: &AccountModel{db.Conn},
		Movie:   &MovieModel{db.Conn},
		Review:  &ReviewModel{db.Conn},
	}
}
